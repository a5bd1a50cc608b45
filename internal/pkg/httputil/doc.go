// Package httputil provides shared HTTP response helpers for the trigger
// router. Handlers use these instead of raw http.ResponseWriter calls so
// every endpoint answers with the same JSON error envelope.
package httputil
