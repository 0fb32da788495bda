package conf

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/tphakala/prodcon/internal/errors"
	"github.com/tphakala/prodcon/internal/privacy"
)

// DumpYAML writes the effective settings as YAML. The keys match those
// accepted in prodcon.yaml, so the output can be used as a config file.
// The key in the Sentry DSN is redacted.
func DumpYAML(s *Settings, w io.Writer) error {
	out := *s
	out.Sentry.DSN = privacy.RedactCredentials(out.Sentry.DSN)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&out); err != nil {
		return errors.New(err).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Context("operation", "dump_yaml").
			Build()
	}
	if err := enc.Close(); err != nil {
		return errors.New(err).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Context("operation", "dump_yaml").
			Build()
	}
	return nil
}
