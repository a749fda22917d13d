// Package config loads lrm settings from .lrm.yaml, LRM_* environment
// variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"github.com/samber/lo"
	"github.com/spf13/viper"

	"github.com/valpere/lrm/internal/resource"
	"github.com/valpere/lrm/internal/translator"
)

var log = logging.Logger("lrm/config")

const (
	FileName  = ".lrm.yaml"
	EnvPrefix = "LRM"

	defaultDBDir  = ".lrm"
	defaultDBName = "lrm.db"
)

type ProviderConfig struct {
	APIKey       string   `mapstructure:"api_key"`
	BaseURL      string   `mapstructure:"base_url"`
	Credentials  string   `mapstructure:"credentials"`
	Model        string   `mapstructure:"model"`
	Models       []string `mapstructure:"models"`
	SystemPrompt string   `mapstructure:"system_prompt"`
}

type ScanConfig struct {
	Exclude    []string `mapstructure:"exclude"`
	Extensions []string `mapstructure:"extensions"`
	ClassName  string   `mapstructure:"class_name"`
}

type TranslateConfig struct {
	Services    []string      `mapstructure:"services"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxAttempts int           `mapstructure:"max_attempts"`
	SourceLang  string        `mapstructure:"source_lang"`

	// ArbiterModel is the Ollama model that picks among valid candidates.
	ArbiterModel string `mapstructure:"arbiter_model"`
}

type ServeConfig struct {
	Addr      string `mapstructure:"addr"`
	RateLimit int    `mapstructure:"rate_limit"`
}

type Config struct {
	ResourcePath string                    `mapstructure:"resource_path"`
	Format       string                    `mapstructure:"format"`
	SourcePath   string                    `mapstructure:"source_path"`
	DBPath       string                    `mapstructure:"db_path"`
	LogLevel     string                    `mapstructure:"log_level"`
	Scan         ScanConfig                `mapstructure:"scan"`
	Translate    TranslateConfig           `mapstructure:"translate"`
	Serve        ServeConfig               `mapstructure:"serve"`
	Providers    map[string]ProviderConfig `mapstructure:"providers"`

	v    *viper.Viper
	file string
}

// SetDefaults registers every known key so that environment variables are
// picked up when unmarshalling.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("resource_path", ".")
	v.SetDefault("format", "resx")
	v.SetDefault("source_path", "")
	v.SetDefault("db_path", "")
	v.SetDefault("log_level", "warn")
	v.SetDefault("scan.exclude", []string{})
	v.SetDefault("scan.extensions", []string{})
	v.SetDefault("scan.class_name", "Resources")
	v.SetDefault("translate.services", []string{"google"})
	v.SetDefault("translate.timeout", 60*time.Second)
	v.SetDefault("translate.max_attempts", 3)
	v.SetDefault("translate.source_lang", "")
	v.SetDefault("translate.arbiter_model", "")
	v.SetDefault("serve.addr", "127.0.0.1:5000")
	v.SetDefault("serve.rate_limit", 100)
	for _, p := range translator.Providers() {
		prefix := "providers." + p.Name + "."
		v.SetDefault(prefix+"api_key", "")
		v.SetDefault(prefix+"base_url", "")
		v.SetDefault(prefix+"credentials", "")
		v.SetDefault(prefix+"model", "")
		v.SetDefault(prefix+"models", []string{})
		v.SetDefault(prefix+"system_prompt", "")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads file, or .lrm.yaml from resourceDir and then $HOME when file is
// empty. A missing config file is not an error. Flags bound to v before the
// call take precedence.
func Load(v *viper.Viper, file, resourceDir string) (*Config, error) {
	SetDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.SetConfigType("yaml")
		if resourceDir != "" {
			v.AddConfigPath(resourceDir)
		}
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		log.Debugw("no config file found", "dir", resourceDir)
	}

	cfg := &Config{v: v, file: v.ConfigFileUsed()}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if _, err := resource.FormatByName(cfg.Format); err != nil {
		return nil, err
	}
	if cfg.file == "" {
		dir := resourceDir
		if dir == "" {
			dir = cfg.ResourcePath
		}
		cfg.file = filepath.Join(dir, FileName)
	}

	log.Debugw("config loaded", "file", v.ConfigFileUsed(), "resourcePath", cfg.ResourcePath, "format", cfg.Format)
	return cfg, nil
}

// File is the config file in use, or the one SetAPIKey would create.
func (c *Config) File() string {
	return c.file
}

// ResourceFormat returns the configured resource format.
func (c *Config) ResourceFormat() resource.Format {
	f, _ := resource.FormatByName(c.Format)
	return f
}

// DatabasePath is db_path, or .lrm/lrm.db under the resource directory.
func (c *Config) DatabasePath() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	return filepath.Join(c.ResourcePath, defaultDBDir, defaultDBName)
}

// SourceDir is source_path, or the parent of the resource directory.
func (c *Config) SourceDir() string {
	if c.SourcePath != "" {
		return c.SourcePath
	}
	abs, err := filepath.Abs(c.ResourcePath)
	if err != nil {
		return filepath.Dir(c.ResourcePath)
	}
	return filepath.Dir(abs)
}

// ServiceConfig returns the translator settings of a provider.
func (c *Config) ServiceConfig(provider string) translator.ServiceConfig {
	p := c.Providers[strings.ToLower(provider)]
	return translator.ServiceConfig{
		APIKey:       p.APIKey,
		BaseURL:      p.BaseURL,
		Credentials:  p.Credentials,
		Model:        p.Model,
		Timeout:      c.Translate.Timeout,
		SystemPrompt: p.SystemPrompt,
	}
}

// Models returns the model list configured for an LLM provider.
func (c *Config) Models(provider string) []string {
	return c.Providers[strings.ToLower(provider)].Models
}

// SetAPIKey stores key for provider and writes the config file.
func (c *Config) SetAPIKey(provider, key string) error {
	provider = strings.ToLower(provider)
	known := lo.ContainsBy(translator.Providers(), func(p translator.ProviderInfo) bool { return p.Name == provider })
	if !known {
		return fmt.Errorf("%w: %s", translator.ErrUnknownProvider, provider)
	}
	return c.writeProviderKey(provider, key)
}

// DeleteAPIKey clears the stored key of provider.
func (c *Config) DeleteAPIKey(provider string) error {
	return c.writeProviderKey(strings.ToLower(provider), "")
}

func (c *Config) writeProviderKey(provider, key string) error {
	c.v.Set("providers."+provider+".api_key", key)
	p := c.Providers[provider]
	p.APIKey = key
	if c.Providers == nil {
		c.Providers = make(map[string]ProviderConfig)
	}
	c.Providers[provider] = p

	if err := os.MkdirAll(filepath.Dir(c.file), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := c.v.WriteConfigAs(c.file); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	log.Infow("config written", "file", c.file, "provider", provider)
	return nil
}
