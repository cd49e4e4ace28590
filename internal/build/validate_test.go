package build

import (
	"testing"

	"github.com/crowdsecurity/go-cs-lib/cstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotjs/closure/internal/config"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		targets  []config.Target
		expected []string
	}{
		{
			name: "valid",
			targets: []config.Target{
				{Name: "a", Sources: []string{"a.js"}, Outputs: []string{"a.min.js"}},
				{Name: "b", Sources: []string{"a.min.js"}, Outputs: []string{"b.min.js"}, DependsOn: []string{"a"}},
			},
		},
		{
			name:     "empty name",
			targets:  []config.Target{{Sources: []string{"a.js"}}},
			expected: []string{"target at index 0 has an empty name"},
		},
		{
			name:     "empty paths",
			targets:  []config.Target{{Name: "a", Sources: []string{""}, Outputs: []string{""}}},
			expected: []string{`target "a": empty source path`, `target "a": empty output path`},
		},
		{
			name: "shared output",
			targets: []config.Target{
				{Name: "a", Sources: []string{"a.js"}, Outputs: []string{"out.js"}},
				{Name: "b", Sources: []string{"b.js"}, Outputs: []string{"out.js"}},
			},
			expected: []string{`target "b": output out.js is also written by target "a"`},
		},
		{
			name:     "unknown dependency",
			targets:  []config.Target{{Name: "a", Sources: []string{"a.js"}, DependsOn: []string{"z"}}},
			expected: []string{`target "a": depends on unknown target z`},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			errs := Validate(tc.targets)

			msgs := make([]string, len(errs))
			for i, e := range errs {
				msgs[i] = e.Error()
			}

			if len(tc.expected) == 0 {
				assert.Empty(t, msgs)
				return
			}

			assert.Equal(t, tc.expected, msgs)
		})
	}
}

func TestSelect(t *testing.T) {
	targets := []config.Target{
		{Name: "base", Sources: []string{"base.js"}},
		{Name: "colors", Sources: []string{"colors.js"}},
		{Name: "lib", Sources: []string{"lib.js"}, DependsOn: []string{"base"}},
		{Name: "app", Sources: []string{"app.js"}, DependsOn: []string{"lib"}},
	}

	all, err := Select(targets)
	require.NoError(t, err)
	assert.Equal(t, targets, all)

	selected, err := Select(targets, "app")
	require.NoError(t, err)

	names := make([]string, len(selected))
	for i, s := range selected {
		names[i] = s.Name
	}

	assert.Equal(t, []string{"base", "lib", "app"}, names, "dependencies are pulled in, declaration order is kept")

	_, err = Select(targets, "colors", "nope")
	cstest.RequireErrorContains(t, err, `unknown target "nope"`)
}
