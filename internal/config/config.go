// Package config собирает настройки процесса из переменных окружения.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Значения по умолчанию.
const (
	DefaultPort            = "8080"
	DefaultAPIKeyHeader    = "X-N8N-API-KEY"
	DefaultN8NTimeout      = 30 * time.Second
	DefaultRequestTimeout  = 15 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
)

// Config — настройки nodehub-api.
type Config struct {
	Port string `validate:"required,numeric"`

	// DBURL выбирает хранилище по схеме: postgres://, mongodb://, memory://.
	DBURL  string `validate:"required"`
	DBName string

	N8N N8N

	// AMQPURL пустой — события не публикуются.
	AMQPURL string `validate:"omitempty,url"`

	CORSAllowedOrigins []string `validate:"dive,required"`

	RequestTimeout  time.Duration `validate:"gt=0"`
	ShutdownTimeout time.Duration `validate:"gt=0"`
}

// N8N — доступ к API n8n.
type N8N struct {
	BaseURL      string        `validate:"omitempty,url"`
	APIKey       string        `validate:"required_with=BaseURL"`
	APIKeyHeader string        `validate:"required"`
	Timeout      time.Duration `validate:"gt=0"`
}

// Enabled сообщает, настроен ли прокси к n8n.
func (n N8N) Enabled() bool {
	return n.BaseURL != ""
}

var validate = validator.New()

// Load читает конфигурацию из окружения процесса.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom читает конфигурацию через getenv и валидирует её.
func LoadFrom(getenv func(string) string) (*Config, error) {
	env := func(keys ...string) string {
		for _, k := range keys {
			if v := strings.TrimSpace(getenv(k)); v != "" {
				return v
			}
		}
		return ""
	}

	var errs []error
	duration := func(key string, def time.Duration) time.Duration {
		raw := env(key)
		if raw == "" {
			return def
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return def
		}
		return d
	}

	cfg := &Config{
		Port:    or(env("PORT", "API_PORT"), DefaultPort),
		DBURL:   env("DB_URL", "MONGODB_URI"),
		DBName:  env("DB_NAME"),
		AMQPURL: env("AMQP_URL"),
		N8N: N8N{
			BaseURL:      strings.TrimRight(env("N8N_BASE_URL"), "/"),
			APIKey:       env("N8N_API_KEY"),
			APIKeyHeader: or(env("N8N_API_KEY_HEADER"), DefaultAPIKeyHeader),
			Timeout:      duration("N8N_TIMEOUT", DefaultN8NTimeout),
		},
		CORSAllowedOrigins: splitList(or(env("CORS_ALLOWED_ORIGINS"), "*")),
		RequestTimeout:     duration("REQUEST_TIMEOUT", DefaultRequestTimeout),
		ShutdownTimeout:    duration("SHUTDOWN_TIMEOUT", DefaultShutdownTimeout),
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, formatValidationError(err)
	}
	return cfg, nil
}

// Addr — адрес для http.Server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// formatValidationError сворачивает ошибки валидатора в одну читаемую.
func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		field := e.Namespace()
		switch e.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "required_with":
			msgs = append(msgs, fmt.Sprintf("%s is required when %s is set", field, e.Param()))
		case "url":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid URL, got %q", field, e.Value()))
		case "numeric":
			msgs = append(msgs, fmt.Sprintf("%s must be numeric, got %q", field, e.Value()))
		case "gt":
			msgs = append(msgs, field+" must be positive")
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func or(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
