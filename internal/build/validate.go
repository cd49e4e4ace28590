package build

import (
	"fmt"

	"github.com/dotjs/closure/internal/config"
)

// ValidationError is one problem found in the target declarations.
type ValidationError struct {
	Target     string `json:"target,omitempty"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

func (e ValidationError) Error() string {
	if e.Target == "" {
		return e.Message
	}

	return fmt.Sprintf("target %q: %s", e.Target, e.Message)
}

// Validate checks names, sources, outputs and dependency references.
// Cycles are reported by the resolver.
func Validate(targets []config.Target) []ValidationError {
	var errs []ValidationError

	names := make(map[string]bool, len(targets))
	for i, t := range targets {
		switch {
		case t.Name == "":
			errs = append(errs, ValidationError{
				Message: fmt.Sprintf("target at index %d has an empty name", i), Suggestion: `Name the block, e.g. target "app.min.js" { ... }`,
			})
		case names[t.Name]:
			errs = append(errs, ValidationError{
				Target: t.Name, Message: "duplicate target name", Suggestion: "Use unique names for each target",
			})
		default:
			names[t.Name] = true
		}
	}

	writers := make(map[string]string)

	for _, t := range targets {
		if len(t.Sources) == 0 {
			errs = append(errs, ValidationError{
				Target: t.Name, Message: "no source to compile", Suggestion: "List at least one file in sources",
			})
		}

		for _, src := range t.Sources {
			if src == "" {
				errs = append(errs, ValidationError{Target: t.Name, Message: "empty source path"})
			}
		}

		for _, out := range t.Outputs {
			if out == "" {
				errs = append(errs, ValidationError{Target: t.Name, Message: "empty output path"})
				continue
			}

			if other, ok := writers[out]; ok && other != t.Name {
				errs = append(errs, ValidationError{
					Target: t.Name, Message: fmt.Sprintf("output %s is also written by target %q", out, other),
					Suggestion: "Write each output file from a single target",
				})

				continue
			}

			writers[out] = t.Name
		}

		for _, dep := range t.DependsOn {
			if !names[dep] {
				errs = append(errs, ValidationError{
					Target: t.Name, Message: "depends on unknown target " + dep, Suggestion: "Reference an existing target name",
				})
			}
		}
	}

	return errs
}

// Select returns the named targets and everything they depend on, in
// declaration order. No names selects every target.
func Select(targets []config.Target, names ...string) ([]config.Target, error) {
	if len(names) == 0 {
		return targets, nil
	}

	byName := make(map[string]config.Target, len(targets))
	for _, t := range targets {
		byName[t.Name] = t
	}

	wanted := make(map[string]bool)

	var visit func(name string) error

	visit = func(name string) error {
		if wanted[name] {
			return nil
		}

		t, ok := byName[name]
		if !ok {
			return fmt.Errorf("unknown target %q", name)
		}

		wanted[name] = true

		for _, dep := range t.DependsOn {
			if err := visit(dep); err != nil {
				return err
			}
		}

		return nil
	}

	for _, name := range names {
		if err := visit(name); err != nil {
			return nil, err
		}
	}

	selected := make([]config.Target, 0, len(wanted))
	for _, t := range targets {
		if wanted[t.Name] {
			selected = append(selected, t)
		}
	}

	return selected, nil
}
