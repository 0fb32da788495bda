// conf/defaults.go default values for settings
package conf

import (
	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig(v *viper.Viper) {
	v.SetDefault("debug", false)

	v.SetDefault("log.level", "info")

	v.SetDefault("run.print", 3)
	v.SetDefault("run.mode", 3)
	v.SetDefault("run.stop", "")
	v.SetDefault("run.count", 10)
	v.SetDefault("run.countby", "auto")
	v.SetDefault("run.interactive", false)

	v.SetDefault("buffer.capacity", DefaultCapacity)

	v.SetDefault("producer.rate", 0.0)
	v.SetDefault("producer.burst", 1)
	v.SetDefault("producer.seed", 0)
	v.SetDefault("producer.sequence", []string{})

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.listen", "127.0.0.1:9464")

	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "production")
}
