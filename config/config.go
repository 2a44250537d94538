package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is the application configuration read from config.json, with secrets
// overridable from the environment (or a .env file in development).
type Config struct {
	Env        string          `json:"env,omitempty"`
	ServerAddr string          `json:"server_addr,omitempty"`
	LogLevel   string          `json:"log_level,omitempty"` // debug | info | warn | error
	LLM        LLMConfig       `json:"llm"`
	Database   DatabaseConfig  `json:"database"`
	Publisher  PublisherConfig `json:"publisher"`
	NATS       NATSConfig      `json:"nats"`
	OTel       OTelConfig      `json:"otel"`
}

// LLMConfig selects and configures the language-model provider.
type LLMConfig struct {
	Provider string `json:"provider,omitempty"` // openai | deepseek | anthropic | mock
	Model    string `json:"model,omitempty"`
	APIKey   string `json:"api_key,omitempty"`
	BaseURL  string `json:"base_url,omitempty"`
}

type DatabaseConfig struct {
	Driver string `json:"driver,omitempty"` // sqlite | mysql
	DSN    string `json:"dsn,omitempty"`
	Debug  bool   `json:"debug,omitempty"`
}

type PublisherConfig struct {
	Platform string       `json:"platform,omitempty"` // qiita | wechat
	Qiita    QiitaConfig  `json:"qiita"`
	WeChat   WeChatConfig `json:"wechat"`
}

type QiitaConfig struct {
	Token   string `json:"token,omitempty"`
	BaseURL string `json:"base_url,omitempty"`
	Private bool   `json:"private,omitempty"`
}

// WeChatConfig holds the WeChat official account credentials. The draft
// cover is either ThumbMediaID (permanent material already uploaded) or
// CoverPath, an image uploaded on first publish.
type WeChatConfig struct {
	AppID        string `json:"app_id,omitempty"`
	AppSecret    string `json:"app_secret,omitempty"`
	ThumbMediaID string `json:"thumb_media_id,omitempty"`
	CoverPath    string `json:"cover_path,omitempty"`
	Author       string `json:"author,omitempty"`
	BaseURL      string `json:"base_url,omitempty"`
}

type NATSConfig struct {
	URL           string `json:"url,omitempty"`
	SubjectPrefix string `json:"subject_prefix,omitempty"`
}

type OTelConfig struct {
	Endpoint       string `json:"endpoint,omitempty"`
	Headers        string `json:"headers,omitempty"`
	ServiceName    string `json:"service_name,omitempty"`
	ServiceVersion string `json:"service_version,omitempty"`
}

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Default returns a configuration usable for local development: sqlite file
// storage, the offline mock model and the qiita platform.
func Default() Config {
	return Config{
		Env:        EnvDevelopment,
		ServerAddr: ":8080",
		LLM: LLMConfig{
			Provider: "mock",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "data/artifacts.db",
		},
		Publisher: PublisherConfig{
			Platform: "qiita",
			Qiita:    QiitaConfig{BaseURL: "https://qiita.com"},
			WeChat:   WeChatConfig{BaseURL: "https://api.weixin.qq.com"},
		},
		NATS: NATSConfig{SubjectPrefix: "artifacts"},
		OTel: OTelConfig{
			ServiceName:    "chat-artifact-publisher",
			ServiceVersion: "dev",
		},
	}
}

// LoadConfig reads JSON config from disk. A missing file is not an error: the
// defaults plus environment overrides are used instead.
func LoadConfig(path string) (Config, error) {
	if getEnv("APP_ENV", EnvDevelopment) == EnvDevelopment {
		_ = godotenv.Load(".env")
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, err
		default:
			if err := json.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parsing %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Env = getEnv("APP_ENV", cfg.Env)
	cfg.ServerAddr = getEnv("SERVER_ADDR", cfg.ServerAddr)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	cfg.LLM.Provider = getEnv("LLM_PROVIDER", cfg.LLM.Provider)
	cfg.LLM.Model = getEnv("LLM_MODEL", cfg.LLM.Model)
	cfg.LLM.BaseURL = getEnv("LLM_BASE_URL", cfg.LLM.BaseURL)
	switch cfg.LLM.Provider {
	case "anthropic":
		cfg.LLM.APIKey = getEnv("ANTHROPIC_API_KEY", cfg.LLM.APIKey)
	case "openai", "deepseek":
		cfg.LLM.APIKey = getEnv("OPENAI_API_KEY", cfg.LLM.APIKey)
	}
	cfg.LLM.APIKey = getEnv("LLM_API_KEY", cfg.LLM.APIKey)

	cfg.Database.Driver = getEnv("DATABASE_DRIVER", cfg.Database.Driver)
	cfg.Database.DSN = getEnv("DATABASE_DSN", cfg.Database.DSN)
	cfg.Database.Debug = getEnvBool("DATABASE_DEBUG", cfg.Database.Debug)

	cfg.Publisher.Platform = getEnv("PUBLISH_PLATFORM", cfg.Publisher.Platform)
	cfg.Publisher.Qiita.Token = getEnv("QIITA_TOKEN", cfg.Publisher.Qiita.Token)
	cfg.Publisher.WeChat.AppID = getEnv("WECHAT_APP_ID", cfg.Publisher.WeChat.AppID)
	cfg.Publisher.WeChat.AppSecret = getEnv("WECHAT_APP_SECRET", cfg.Publisher.WeChat.AppSecret)
	cfg.Publisher.WeChat.ThumbMediaID = getEnv("WECHAT_THUMB_MEDIA_ID", cfg.Publisher.WeChat.ThumbMediaID)

	cfg.NATS.URL = getEnv("NATS_URL", cfg.NATS.URL)

	cfg.OTel.Endpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTel.Endpoint)
	cfg.OTel.Headers = getEnv("OTEL_EXPORTER_OTLP_HEADERS", cfg.OTel.Headers)
	cfg.OTel.ServiceName = getEnv("OTEL_SERVICE_NAME", cfg.OTel.ServiceName)
}

// Validate checks that the selected provider, driver and platform are known.
// Credentials are checked later by the component that needs them.
func (c Config) Validate() error {
	switch c.LLM.Provider {
	case "openai", "deepseek", "anthropic", "mock":
	case "":
		return errors.New("llm.provider is required")
	default:
		return fmt.Errorf("llm provider %s not supported", c.LLM.Provider)
	}
	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("database driver %q not supported", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}
	switch c.Publisher.Platform {
	case "qiita", "wechat":
	default:
		return fmt.Errorf("publish platform %q not supported", c.Publisher.Platform)
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

func (c Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

func (c NATSConfig) Enabled() bool {
	return c.URL != ""
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
