package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/yvc-project/yvcweb/pkg/checker"
)

// EnvPrefix prefixes every environment variable, e.g. YVCWEB_CHECKER_PATH.
const EnvPrefix = "YVCWEB"

// Keys
const (
	KeyListen         = "listen"
	KeyCheckerPath    = "checker.path"
	KeyCheckerArgs    = "checker.args"
	KeyCheckerDir     = "checker.dir"
	KeyCheckerTimeout = "checker.timeout"
	KeyMetricsPath    = "metrics.path"
	KeyVEXAuthor      = "vex.author"
)

type Config struct {
	Listen      string
	Checker     checker.Command
	MetricsPath string
	VEXAuthor   string
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault(KeyListen, "127.0.0.1:8080")
	v.SetDefault(KeyCheckerPath, checker.DefaultPath)
	v.SetDefault(KeyCheckerArgs, []string{})
	v.SetDefault(KeyCheckerDir, os.TempDir())
	v.SetDefault(KeyCheckerTimeout, time.Duration(0))
	v.SetDefault(KeyMetricsPath, "/metrics")
	v.SetDefault(KeyVEXAuthor, "yvcweb")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// BindFlags maps command-line flags onto config keys. Flags that were not
// set fall back to the environment, the config file, and the defaults, in
// that order.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) error {
	for flag, key := range keys {
		f := flags.Lookup(flag)
		if f == nil {
			return fmt.Errorf("unknown flag %q", flag)
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding flag %q: %w", flag, err)
		}
	}

	return nil
}

// Load reads cfgFile, when given, and returns the resulting configuration.
func Load(v *viper.Viper, cfgFile string) (Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		logrus.Debugf("Using config file: %s", v.ConfigFileUsed())
	}

	cfg := Config{
		Listen: v.GetString(KeyListen),
		Checker: checker.Command{
			Path:    v.GetString(KeyCheckerPath),
			Args:    v.GetStringSlice(KeyCheckerArgs),
			Dir:     v.GetString(KeyCheckerDir),
			Timeout: v.GetDuration(KeyCheckerTimeout),
		},
		MetricsPath: v.GetString(KeyMetricsPath),
		VEXAuthor:   v.GetString(KeyVEXAuthor),
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var errs []error

	if c.Listen == "" {
		errs = append(errs, errors.New("listen address must not be empty"))
	}
	if c.Checker.Path == "" {
		errs = append(errs, errors.New("checker path must not be empty"))
	}
	if c.Checker.Timeout < 0 {
		errs = append(errs, fmt.Errorf("checker timeout must not be negative, got %s", c.Checker.Timeout))
	}
	if c.MetricsPath != "" && !strings.HasPrefix(c.MetricsPath, "/") {
		errs = append(errs, fmt.Errorf("metrics path must start with /, got %q", c.MetricsPath))
	}

	return errors.Join(errs...)
}
