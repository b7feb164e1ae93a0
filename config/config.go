package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/takaishi/grepapp/logger"
)

const envPrefix = "GREPAPP"

// Output formats
const (
	FormatPretty = "pretty"
	FormatJSON   = "json"
)

// Colour modes
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config holds application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output"`
	Theme   ThemeConfig   `mapstructure:"theme" yaml:"theme"`
	Logging logger.Config `mapstructure:"logging" yaml:"logging"`
}

// ServerConfig configures the search service connection
type ServerConfig struct {
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
	Timeout  int    `mapstructure:"timeout" yaml:"timeout"` // seconds, 0 disables
}

// OutputConfig configures how results are printed
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format"` // pretty, json
	Color  string `mapstructure:"color" yaml:"color"`   // auto, always, never
}

// ThemeConfig selects syntax colour schemes
type ThemeConfig struct {
	Mode  string `mapstructure:"mode" yaml:"mode"`   // auto, dark, light
	Dark  string `mapstructure:"dark" yaml:"dark"`   // style used on dark terminals
	Light string `mapstructure:"light" yaml:"light"` // style used on light terminals
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Endpoint: "https://mcp.grep.app",
			Timeout:  30,
		},
		Output: OutputConfig{
			Format: FormatPretty,
			Color:  ColorAuto,
		},
		Theme: ThemeConfig{
			Mode:  "auto",
			Dark:  "github-dark",
			Light: "github",
		},
		Logging: *logger.DefaultConfig(),
	}
}

// NewViper returns a viper instance carrying the defaults and reading
// GREPAPP_* environment variables
func NewViper() *viper.Viper {
	v := viper.New()
	d := Default()

	v.SetDefault("server.endpoint", d.Server.Endpoint)
	v.SetDefault("server.timeout", d.Server.Timeout)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.color", d.Output.Color)
	v.SetDefault("theme.mode", d.Theme.Mode)
	v.SetDefault("theme.dark", d.Theme.Dark)
	v.SetDefault("theme.light", d.Theme.Light)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output", d.Logging.Output)
	v.SetDefault("logging.file", d.Logging.File.Filename)
	v.SetDefault("logging.max_size", d.Logging.File.MaxSize)
	v.SetDefault("logging.max_age", d.Logging.File.MaxAge)
	v.SetDefault("logging.max_backups", d.Logging.File.MaxBackups)
	v.SetDefault("logging.compress", d.Logging.File.Compress)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file into v and decodes the result. A missing
// default config file is not an error; a missing explicit one is.
func Load(v *viper.Viper, configFlag string) (*Config, error) {
	if configFlag != "" {
		v.SetConfigFile(ResolveConfigPath(configFlag))
	} else {
		v.AddConfigPath(ConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFlag != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Logging.File.Filename == "" {
		cfg.Logging.File.Filename = LogFile()
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail late
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid server.endpoint %q, must be an http(s) URL", c.Server.Endpoint)
	}
	if c.Server.Timeout < 0 {
		return fmt.Errorf("invalid server.timeout %d, must not be negative", c.Server.Timeout)
	}
	if !slices.Contains([]string{FormatPretty, FormatJSON}, c.Output.Format) {
		return fmt.Errorf("invalid output.format %q, must be one of: pretty, json", c.Output.Format)
	}
	if !slices.Contains([]string{ColorAuto, ColorAlways, ColorNever}, c.Output.Color) {
		return fmt.Errorf("invalid output.color %q, must be one of: auto, always, never", c.Output.Color)
	}
	if !slices.Contains([]string{"", "auto", "dark", "light"}, strings.ToLower(c.Theme.Mode)) {
		return fmt.Errorf("invalid theme.mode %q, must be one of: auto, dark, light", c.Theme.Mode)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

// Timeout returns the request timeout
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Server.Timeout) * time.Second
}

// DefaultYAML renders the default configuration as a config file
func DefaultYAML() ([]byte, error) {
	d := Default()
	d.Logging.File.Filename = ""
	out, err := yaml.Marshal(d)
	if err != nil {
		return nil, err
	}
	return append([]byte("# grepapp configuration\n"), out...), nil
}
