package conf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/prodcon/internal/errors"
	"github.com/tphakala/prodcon/internal/runctl"
)

func TestPromptRunConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		input      string
		wantPrint  runctl.PrintMode
		wantMode   runctl.Mode
		wantN      int
		wantStop   string
		wantOutput []string
	}{
		{
			name:      "exactly N",
			input:     "3\n3\n5\n",
			wantPrint: runctl.PrintBoth, wantMode: runctl.ModeExactlyN, wantN: 5,
			wantOutput: []string{"Print option 3 selected.", "Runtime option 3 selected.", "5 iterations selected."},
		},
		{
			name:      "forever",
			input:     "2\n1\n",
			wantPrint: runctl.PrintConsumer, wantMode: runctl.ModeForever,
			wantOutput: []string{"Runtime option 1 selected."},
		},
		{
			name:      "out of range answers are asked again",
			input:     "7\n1\n0\n3\n-4\n2\n",
			wantPrint: runctl.PrintProducer, wantMode: runctl.ModeExactlyN, wantN: 2,
			wantOutput: []string{
				"Please enter either 1, 2, or 3.",
				"Please enter a number of times to run that is greater than zero.",
			},
		},
		{
			name:      "stop character retried until a letter",
			input:     "1\n2\n5\nab\nM\n",
			wantPrint: runctl.PrintProducer, wantMode: runctl.ModeUntilSequence, wantStop: "lmn",
			wantOutput: []string{"between 'a' and 'z'", "lmn stop sequence selected."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var out strings.Builder
			rc, err := PromptRunConfig(strings.NewReader(tt.input), &out)
			require.NoError(t, err)

			assert.Equal(t, tt.wantPrint, rc.Print)
			assert.Equal(t, tt.wantMode, rc.Mode)
			assert.Equal(t, tt.wantN, rc.Iterations)
			assert.Equal(t, tt.wantStop, rc.StopSequence.String())
			assert.Equal(t, DefaultCapacity, rc.Capacity)
			assert.Equal(t, runctl.CountAuto, rc.CountBy)
			for _, want := range tt.wantOutput {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}

func TestPromptRunConfigCriticalInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{"non numeric print option", "x\n"},
		{"non numeric iterations", "1\n3\nten\n"},
		{"input ends early", "1\n"},
		{"no input", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var out strings.Builder
			_, err := PromptRunConfig(strings.NewReader(tt.input), &out)
			require.Error(t, err)
			require.ErrorIs(t, err, ErrCriticalInput)
			assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
			assert.Contains(t, out.String(), "Critical invalid user input. Exiting program...")
		})
	}
}
