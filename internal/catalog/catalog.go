// Package catalog supplies the ordered list of country codes a run covers.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/ignite/trending-snapshots/internal/config"
	"github.com/ignite/trending-snapshots/internal/pkg/logger"
)

var (
	// ErrEmptyCatalog is returned when a source yields no usable codes.
	ErrEmptyCatalog = errors.New("country code catalog is empty")
	// ErrInvalidCode is returned for a code with characters outside A-Z and 0-9.
	ErrInvalidCode = errors.New("invalid country code")
)

// Source yields country codes in run order. Duplicates are kept.
type Source interface {
	Codes(ctx context.Context) ([]string, error)
}

// Open returns the source selected by cfg and a func releasing it.
func Open(cfg config.CatalogConfig) (Source, func() error, error) {
	switch cfg.Type {
	case "", "file":
		return NewFileSource(cfg.Path), func() error { return nil }, nil
	case "postgres":
		src, err := OpenPostgresSource(cfg.DatabaseURL, cfg.Table)
		if err != nil {
			return nil, nil, err
		}
		return src, src.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown catalog type %q", cfg.Type)
	}
}

// Load reads src, normalizes the codes and rejects an empty result or any
// code that is not alphanumeric.
func Load(ctx context.Context, src Source) ([]string, error) {
	codes, err := src.Codes(ctx)
	if err != nil {
		return nil, err
	}
	codes = Normalize(codes)
	if len(codes) == 0 {
		return nil, ErrEmptyCatalog
	}
	for _, code := range codes {
		if !alphanumeric(code) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidCode, code)
		}
	}
	return codes, nil
}

func alphanumeric(code string) bool {
	for _, c := range code {
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// Normalize upper-cases codes and canonicalizes ISO 3166 regions, so "fr"
// and "FRA" both become "FR". Unknown codes are kept verbatim.
func Normalize(codes []string) []string {
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" {
			continue
		}
		region, err := language.ParseRegion(code)
		if err != nil {
			logger.Warn("Unknown country code kept as-is", "code", code, "error", err)
			out = append(out, code)
			continue
		}
		if !region.IsCountry() {
			logger.Warn("Region code is not a country", "code", code)
		}
		out = append(out, region.String())
	}
	return out
}
