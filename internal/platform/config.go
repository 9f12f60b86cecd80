package platform

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultContentDir = "src/content"
	DefaultIndexPath  = ".contentschema/index.db"
	EnvPrefix         = "CONTENTSCHEMA"
	ConfigName        = "contentschema"
)

type Config struct {
	ContentDir  string `mapstructure:"content"`
	IndexPath   string `mapstructure:"db"`
	LogLevel    string `mapstructure:"log-level"`
	LogFormat   string `mapstructure:"log-format"`
	Strict      bool   `mapstructure:"strict"`
	Concurrency int    `mapstructure:"concurrency"`
	FastIndex   bool   `mapstructure:"fast"`
}

// ConfigSource reports which config file was read, if any.
type ConfigSource struct {
	File string
}

// LoadConfig resolves configuration from flags, CONTENTSCHEMA_* environment
// variables, an optional contentschema.yaml and built-in defaults, in that
// order of precedence.
func LoadConfig(configFile string, flags *pflag.FlagSet) (Config, ConfigSource, error) {
	v := viper.New()

	v.SetDefault("content", DefaultContentDir)
	v.SetDefault("db", DefaultIndexPath)
	v.SetDefault("log-level", "info")
	v.SetDefault("log-format", "text")
	v.SetDefault("strict", false)
	v.SetDefault("concurrency", 0)
	v.SetDefault("fast", false)

	configFile = strings.TrimSpace(configFile)
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, ConfigSource{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	var source ConfigSource
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Config{}, ConfigSource{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		source.File = v.ConfigFileUsed()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, ConfigSource{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, source, nil
}
