// Package config builds the runtime configuration once at startup. Values are layered:
// built-in defaults, then an optional YAML file named by CONFIG_FILE, then environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

const defaultSecretKey = "you-will-never-guess"

// Config holds every setting the server needs. It is passed explicitly to the components that use it.
type Config struct {
	Port         string `yaml:"port"`
	Environment  string `yaml:"environment"`
	LogLevel     string `yaml:"log_level"`
	LogFormat    string `yaml:"log_format"`
	LogstashAddr string `yaml:"logstash_addr"`
	SecretKey    string `yaml:"secret_key"`
	BaseURL      string `yaml:"base_url"`

	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`

	PostsPerPage   int           `yaml:"posts_per_page"`
	Languages      []string      `yaml:"languages"`
	ResetTokenTTL  time.Duration `yaml:"reset_token_ttl"`
	SessionTTL     time.Duration `yaml:"session_ttl"`
	RememberTTL    time.Duration `yaml:"remember_ttl"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	VerifyEmailMX  bool          `yaml:"verify_email_mx"`

	Mail       MailConfig       `yaml:"mail"`
	Translator TranslatorConfig `yaml:"translator"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
}

type MailConfig struct {
	Domain    string `yaml:"domain"`
	APIKey    string `yaml:"api_key"`
	Sender    string `yaml:"sender"`
	Workers   int    `yaml:"workers"`
	QueueSize int    `yaml:"queue_size"`
}

type TranslatorConfig struct {
	Key     string        `yaml:"key"`
	Region  string        `yaml:"region"`
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Port:          "8080",
		Environment:   "development",
		LogLevel:      "INFO",
		LogFormat:     "text",
		SecretKey:     defaultSecretKey,
		BaseURL:       "http://localhost:8080",
		Database:      DatabaseConfig{Port: "5432", SSLMode: "disable"},
		PostsPerPage:  25,
		Languages:     []string{"en", "de"},
		ResetTokenTTL: 10 * time.Minute,
		SessionTTL:    24 * time.Hour,
		RememberTTL:   30 * 24 * time.Hour,
		AllowedOrigins: []string{
			"http://localhost:8080",
		},
		Mail: MailConfig{
			Sender:    "Microblog <no-reply@microblog.example.com>",
			Workers:   2,
			QueueSize: 64,
		},
		Translator: TranslatorConfig{
			URL:     "https://api.cognitive.microsofttranslator.com",
			Timeout: 10 * time.Second,
		},
	}
}

// Load builds the configuration from defaults, the optional CONFIG_FILE and the environment.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Port, "PORT")
	setString(&c.Environment, "ENVIRONMENT")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.LogFormat, "LOG_FORMAT")
	setString(&c.LogstashAddr, "LOGSTASH_ADDR")
	setString(&c.SecretKey, "SECRET_KEY")
	setString(&c.BaseURL, "BASE_URL")

	setString(&c.Database.Host, "DB_HOST")
	setString(&c.Database.Port, "DB_PORT")
	setString(&c.Database.User, "DB_USER")
	setString(&c.Database.Password, "DB_PASS")
	setString(&c.Database.Name, "DB_NAME")
	setString(&c.Database.SSLMode, "DB_SSLMODE")

	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")

	setString(&c.Mail.Domain, "MAILGUN_DOMAIN")
	setString(&c.Mail.APIKey, "MAILGUN_API_KEY")
	setString(&c.Mail.Sender, "MAIL_SENDER")

	setString(&c.Translator.Key, "MS_TRANSLATOR_KEY")
	setString(&c.Translator.Region, "MS_TRANSLATOR_REGION")
	setString(&c.Translator.URL, "TRANSLATOR_URL")

	setList(&c.Languages, "LANGUAGES")
	setList(&c.AllowedOrigins, "ALLOWED_ORIGINS")

	ints := map[string]*int{
		"POSTS_PER_PAGE":  &c.PostsPerPage,
		"MAIL_WORKERS":    &c.Mail.Workers,
		"MAIL_QUEUE_SIZE": &c.Mail.QueueSize,
	}
	for key, target := range ints {
		if err := setInt(target, key); err != nil {
			return err
		}
	}

	durations := map[string]*time.Duration{
		"RESET_TOKEN_TTL":    &c.ResetTokenTTL,
		"SESSION_TTL":        &c.SessionTTL,
		"REMEMBER_TTL":       &c.RememberTTL,
		"TRANSLATOR_TIMEOUT": &c.Translator.Timeout,
	}
	for key, target := range durations {
		if err := setDuration(target, key); err != nil {
			return err
		}
	}

	if v := os.Getenv("VERIFY_EMAIL_MX"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("VERIFY_EMAIL_MX: %w", err)
		}
		c.VerifyEmailMX = b
	}

	return nil
}

// Validate rejects combinations the server must not start with.
func (c *Config) Validate() error {
	if c.PostsPerPage < 1 {
		return fmt.Errorf("posts per page must be positive, got %d", c.PostsPerPage)
	}
	if len(c.Languages) == 0 {
		return fmt.Errorf("at least one language must be configured")
	}
	if c.SessionTTL <= 0 || c.RememberTTL <= 0 {
		return fmt.Errorf("session lifetimes must be positive")
	}
	if c.Mail.Workers < 1 {
		return fmt.Errorf("mail workers must be positive, got %d", c.Mail.Workers)
	}
	if c.IsProduction() {
		if c.SecretKey == "" || c.SecretKey == defaultSecretKey {
			return fmt.Errorf("SECRET_KEY must be set in production")
		}
		if !c.UsesPostgres() {
			return fmt.Errorf("database environment variables not set")
		}
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// UsesPostgres reports whether a database host is configured. Without one the in-memory store is used.
func (c *Config) UsesPostgres() bool {
	return c.Database.Host != ""
}

// DSN returns the libpq style connection string for pgxpool.ParseConfig.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host, c.Database.Port, c.Database.User, c.Database.Password, c.Database.Name, c.Database.SSLMode)
}

func setString(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func setList(target *[]string, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	var items []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	*target = items
}

func setInt(target *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*target = n
	return nil
}

func setDuration(target *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*target = d
	return nil
}
