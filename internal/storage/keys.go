package storage

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/osteele/liquid"
)

// DefaultKeyTemplate yields keys like category/daily_category_scrap_2024.05.01.csv.
const DefaultKeyTemplate = "{{ prefix }}/{{ name }}_{{ date }}.{{ ext }}"

// KeyDateLayout is the date stamp format used inside object keys.
const KeyDateLayout = "2006.01.02"

// KeyBuilder renders object keys from a liquid template. Available
// variables: prefix, name, date, ext, pipeline.
type KeyBuilder struct {
	tpl *liquid.Template
}

// ErrBadKeyTemplate is returned for a template that parses but cannot
// produce a usable daily key.
var ErrBadKeyTemplate = errors.New("bad key template")

// NewKeyBuilder compiles the template and renders it for two dates. An
// unterminated tag or a key that does not change with the date is rejected.
// An empty template means DefaultKeyTemplate.
func NewKeyBuilder(template string) (*KeyBuilder, error) {
	if template == "" {
		template = DefaultKeyTemplate
	}
	tpl, perr := liquid.NewEngine().ParseString(template)
	if perr != nil {
		return nil, fmt.Errorf("parsing key template: %w", perr)
	}
	b := &KeyBuilder{tpl: tpl}

	ks := KeySpec{Pipeline: "trending", Prefix: "p", Name: "n", Ext: "csv", Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	first, err := b.Build(ks)
	if err != nil {
		return nil, err
	}
	ks.Date = ks.Date.AddDate(0, 0, 1)
	second, err := b.Build(ks)
	if err != nil {
		return nil, err
	}
	if first == second {
		return nil, fmt.Errorf("%w: %q does not use {{ date }}", ErrBadKeyTemplate, template)
	}
	return b, nil
}

// KeySpec names one artifact.
type KeySpec struct {
	Pipeline string
	Prefix   string
	Name     string
	Ext      string
	Date     time.Time
}

// Build renders the object key described by ks.
func (b *KeyBuilder) Build(ks KeySpec) (string, error) {
	out, err := b.tpl.RenderString(liquid.Bindings{
		"pipeline": ks.Pipeline,
		"prefix":   ks.Prefix,
		"name":     ks.Name,
		"date":     ks.Date.Format(KeyDateLayout),
		"ext":      ks.Ext,
	})
	if err != nil {
		return "", fmt.Errorf("rendering key template: %w", err)
	}
	if out == "" {
		return "", fmt.Errorf("%w: rendered an empty key", ErrBadKeyTemplate)
	}
	if strings.Contains(out, "{{") || strings.Contains(out, "{%") {
		return "", fmt.Errorf("%w: unterminated tag in %q", ErrBadKeyTemplate, out)
	}
	return out, nil
}
