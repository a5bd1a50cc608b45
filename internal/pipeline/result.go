package pipeline

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ignite/trending-snapshots/internal/youtube"
)

// Kind classifies how a run ended.
type Kind int

const (
	KindOK Kind = iota
	KindConfiguration
	KindConflict
	KindRateLimited
	KindUnexpected
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindConfiguration:
		return "configuration"
	case KindConflict:
		return "conflict"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "unexpected"
	}
}

// StatusCode maps a kind onto the envelope status.
func (k Kind) StatusCode() int {
	switch k {
	case KindOK:
		return http.StatusOK
	case KindConfiguration:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ErrRunInProgress is returned when another invocation holds the run lock.
var ErrRunInProgress = errors.New("run already in progress")

// ConfigError reports missing settings or an unusable country catalog.
// It is never retried.
type ConfigError struct {
	Missing []string
	Reason  string
}

func (e *ConfigError) Error() string {
	if len(e.Missing) > 0 {
		return "missing configuration: " + strings.Join(e.Missing, ", ")
	}
	return "configuration error: " + e.Reason
}

// Classify maps an error returned by a run onto a Kind.
func Classify(err error) Kind {
	var cfgErr *ConfigError
	switch {
	case err == nil:
		return KindOK
	case errors.As(err, &cfgErr):
		return KindConfiguration
	case errors.Is(err, ErrRunInProgress):
		return KindConflict
	case errors.Is(err, youtube.ErrRateLimited):
		return KindRateLimited
	default:
		return KindUnexpected
	}
}

// Body is the envelope payload.
type Body struct {
	Message             string   `json:"message"`
	RunID               string   `json:"run_id,omitempty"`
	Pipeline            string   `json:"pipeline"`
	Bucket              string   `json:"bucket,omitempty"`
	Key                 string   `json:"key,omitempty"`
	Rows                int64    `json:"rows"`
	Countries           int      `json:"countries"`
	IncompleteCountries []string `json:"incomplete_countries"`
}

// Result is the envelope returned by every run.
type Result struct {
	StatusCode int  `json:"statusCode"`
	Body       Body `json:"body"`
}

// BodyJSON renders the body for an HTTP response.
func (r Result) BodyJSON() []byte {
	b := r.Body
	if b.IncompleteCountries == nil {
		b.IncompleteCountries = []string{}
	}
	data, _ := json.Marshal(b)
	return data
}

// JSON renders the whole envelope.
func (r Result) JSON() []byte {
	if r.Body.IncompleteCountries == nil {
		r.Body.IncompleteCountries = []string{}
	}
	data, _ := json.Marshal(r)
	return data
}
