// Package schema verifies loosely-typed configuration maps against
// declared schemas. Verification is lenient: extra keys are ignored, and
// every missing or invalid key is collected rather than failing on the
// first one.
package schema

import (
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"strings"
)

// Field describes one schema entry. Exactly one of the behaviors applies:
// a required field must be present; a pinned field must equal its pinned
// value if the schema declares one; a nested field recurses into a
// sub-schema.
type Field struct {
	Name     string
	Required bool
	Pinned   any
	Nested   *Schema
}

type Schema struct {
	Name   string
	Fields []Field
}

// Check collects the dotted paths of missing or invalid keys in cfg.
// An empty result means cfg satisfies the schema.
func (s *Schema) Check(cfg map[string]any) []string {
	var bad []string
	s.check(cfg, "", &bad)
	sort.Strings(bad)
	return bad
}

func (s *Schema) check(cfg map[string]any, prefix string, bad *[]string) {
	for _, field := range s.Fields {
		path := field.Name
		if prefix != "" {
			path = prefix + "." + field.Name
		}
		val, present := cfg[field.Name]

		switch {
		case field.Nested != nil:
			sub, ok := val.(map[string]any)
			if !present || !ok {
				sub = map[string]any{}
			}
			field.Nested.check(sub, path, bad)

		case field.Pinned != nil:
			if present && !reflect.DeepEqual(val, field.Pinned) {
				*bad = append(*bad, path)
			}
			if !present && field.Required {
				*bad = append(*bad, path)
			}

		case field.Required:
			if !present || val == nil {
				*bad = append(*bad, path)
			}
		}
	}
}

// Validate checks cfg against the schema, logging and returning an error
// listing every bad key. A nil return means the config is usable.
func Validate(cfg map[string]any, s *Schema, logger *slog.Logger) error {
	bad := s.Check(cfg)
	if len(bad) == 0 {
		return nil
	}

	logger.Warn("config failed schema check",
		"schema", s.Name,
		"bad_keys", bad,
	)
	return fmt.Errorf("config does not satisfy schema %q, missing or invalid keys: %s",
		s.Name, strings.Join(bad, ", "))
}

// ForName returns a registered schema, or nil for an unrecognized name.
func ForName(name string) *Schema {
	switch name {
	case "uses_metrics":
		return UsesMetrics()
	default:
		return nil
	}
}

// UsesMetrics describes the config surface expected from any run that
// wires up metric tracking: a list of sink names and the reserved
// batch_size key pinned to the list strategy.
func UsesMetrics() *Schema {
	return &Schema{
		Name: "uses_metrics",
		Fields: []Field{
			{
				Name: "metrics",
				Nested: &Schema{
					Name: "metrics",
					Fields: []Field{
						{Name: "loggers", Required: true},
						{
							Name: "init",
							Nested: &Schema{
								Name: "init",
								Fields: []Field{
									{Name: "batch_size", Pinned: "list", Required: true},
								},
							},
						},
					},
				},
			},
		},
	}
}
