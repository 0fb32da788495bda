package conf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validSettings returns settings equal to the defaults.
func validSettings() *Settings {
	return &Settings{
		Log:      LogSettings{Level: "info"},
		Run:      RunSettings{Print: 3, Mode: 3, Count: 10, CountBy: "auto"},
		Buffer:   BufferSettings{Capacity: DefaultCapacity},
		Producer: ProducerSettings{Burst: 1},
		Metrics:  MetricsSettings{Listen: "127.0.0.1:9464"},
	}
}

func TestValidateSettings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mutate   func(*Settings)
		wantErr  string
		wantErrs int
	}{
		{name: "defaults", mutate: func(*Settings) {}},
		{name: "until sequence", mutate: func(s *Settings) { s.Run.Mode = 2; s.Run.Stop = "Z" }},
		{name: "forever ignores count", mutate: func(s *Settings) { s.Run.Mode = 1; s.Run.Count = 0 }},
		{name: "paced producer", mutate: func(s *Settings) { s.Producer.Rate = 10; s.Producer.Burst = 3 }},
		{name: "scripted producer", mutate: func(s *Settings) { s.Producer.Sequence = []string{"zab", "abc"} }},
		{name: "metrics enabled", mutate: func(s *Settings) { s.Metrics.Enabled = true }},
		{
			name:    "bad log level",
			mutate:  func(s *Settings) { s.Log.Level = "loud" },
			wantErr: "log.level", wantErrs: 1,
		},
		{
			name:    "bad print option",
			mutate:  func(s *Settings) { s.Run.Print = 0 },
			wantErr: "run.print", wantErrs: 1,
		},
		{
			name:    "bad mode",
			mutate:  func(s *Settings) { s.Run.Mode = 4 },
			wantErr: "run.mode", wantErrs: 1,
		},
		{
			name:    "missing stop character",
			mutate:  func(s *Settings) { s.Run.Mode = 2 },
			wantErr: "run.stop", wantErrs: 1,
		},
		{
			name:    "zero count",
			mutate:  func(s *Settings) { s.Run.Count = 0 },
			wantErr: "run.count", wantErrs: 1,
		},
		{
			name:    "bad countby",
			mutate:  func(s *Settings) { s.Run.CountBy = "nobody" },
			wantErr: "run.countby", wantErrs: 1,
		},
		{
			name:    "zero capacity",
			mutate:  func(s *Settings) { s.Buffer.Capacity = 0 },
			wantErr: "buffer.capacity", wantErrs: 1,
		},
		{
			name:    "negative rate",
			mutate:  func(s *Settings) { s.Producer.Rate = -1 },
			wantErr: "producer.rate", wantErrs: 1,
		},
		{
			name:    "paced without burst",
			mutate:  func(s *Settings) { s.Producer.Rate = 5; s.Producer.Burst = 0 },
			wantErr: "producer.burst", wantErrs: 1,
		},
		{
			name:    "malformed scripted product",
			mutate:  func(s *Settings) { s.Producer.Sequence = []string{"abc", "abd"} },
			wantErr: "producer.sequence[1]", wantErrs: 1,
		},
		{
			name:    "metrics without port",
			mutate:  func(s *Settings) { s.Metrics.Enabled = true; s.Metrics.Listen = "localhost" },
			wantErr: "metrics.listen", wantErrs: 1,
		},
		{
			name:    "sentry without dsn",
			mutate:  func(s *Settings) { s.Sentry.Enabled = true },
			wantErr: "sentry.dsn", wantErrs: 1,
		},
		{
			name: "errors are aggregated",
			mutate: func(s *Settings) {
				s.Log.Level = "loud"
				s.Buffer.Capacity = -1
				s.Producer.Rate = -1
			},
			wantErr: "buffer.capacity", wantErrs: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := validSettings()
			tt.mutate(s)

			err := ValidateSettings(s)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			var ve ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Len(t, ve.Errors, tt.wantErrs)
		})
	}
}
