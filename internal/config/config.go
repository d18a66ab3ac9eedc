package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rbxbridge/rbxbridge/internal/bridge"
	"github.com/spf13/viper"
)

const (
	// DefaultPort is the port the in-game agent polls by default.
	DefaultPort = 9999

	envPrefix  = "RBXBRIDGE"
	configName = "rbxbridge"
	configType = "toml"
)

// Config holds bridge configuration.
type Config struct {
	// Addr is the listen address for the HTTP server.
	Addr string
	// ServerURL is the base URL client commands talk to.
	ServerURL string
	Debug     bool
	// LogFormat is "text" or "json".
	LogFormat string
	// BatchBudget bounds the summed code length of one drained batch.
	BatchBudget int
	// EditorSecret enables JWT auth on the editor API when non-empty.
	EditorSecret   string
	AllowedOrigins []string
}

// Overrides optionally overrides values from the config file and
// environment. A nil pointer means "use the file/environment/default value".
type Overrides struct {
	Addr         *string
	ServerURL    *string
	Debug        *bool
	LogFormat    *string
	BatchBudget  *int
	EditorSecret *string
}

// Load reads configuration from defaults, the TOML config file, RBXBRIDGE_*
// environment variables and finally overrides, later sources winning.
//
// configFile names an explicit file that must exist. When empty, rbxbridge.toml
// is looked up in the user config directory and the working directory and is
// optional.
func Load(configFile string, overrides Overrides) (*Config, error) {
	v := viper.New()
	v.SetDefault("addr", fmt.Sprintf(":%d", DefaultPort))
	v.SetDefault("server_url", fmt.Sprintf("http://127.0.0.1:%d", DefaultPort))
	v.SetDefault("debug", false)
	v.SetDefault("log_format", "text")
	v.SetDefault("batch_budget", bridge.DefaultBatchBudget)
	v.SetDefault("editor_secret", "")
	v.SetDefault("allowed_origins", []string{"*"})

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("server_url", envPrefix+"_SERVER_URL", envPrefix+"_URL"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, configName))
		}
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		Addr:           v.GetString("addr"),
		ServerURL:      v.GetString("server_url"),
		Debug:          v.GetBool("debug"),
		LogFormat:      v.GetString("log_format"),
		BatchBudget:    v.GetInt("batch_budget"),
		EditorSecret:   v.GetString("editor_secret"),
		AllowedOrigins: v.GetStringSlice("allowed_origins"),
	}
	// PORT is honoured for hosts that assign one.
	if port := os.Getenv("PORT"); port != "" && os.Getenv(envPrefix+"_ADDR") == "" {
		cfg.Addr = ":" + port
	}
	overrides.apply(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (o Overrides) apply(cfg *Config) {
	if o.Addr != nil {
		cfg.Addr = *o.Addr
	}
	if o.ServerURL != nil {
		cfg.ServerURL = *o.ServerURL
	}
	if o.Debug != nil {
		cfg.Debug = *o.Debug
	}
	if o.LogFormat != nil {
		cfg.LogFormat = *o.LogFormat
	}
	if o.BatchBudget != nil {
		cfg.BatchBudget = *o.BatchBudget
	}
	if o.EditorSecret != nil {
		cfg.EditorSecret = *o.EditorSecret
	}
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return errors.New("addr must not be empty")
	}
	if c.BatchBudget <= 0 {
		return fmt.Errorf("batch_budget must be positive, got %d", c.BatchBudget)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	c.ServerURL = strings.TrimRight(c.ServerURL, "/")
	return nil
}
