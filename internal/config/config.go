// config предоставляет структуру конфигурации веб-клиента и функции
// загрузки из файла/переменных окружения с предсказуемым приоритетом.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config — корневая конфигурация веб-клиента.
// Источники значений (по убыванию приоритета):
//  1. явный путь через флаг --config;
//  2. путь в переменной окружения CONFIG_PATH;
//  3. файл local.yaml из рабочей директории;
//  4. переменные окружения (cleanenv).
type Config struct {
	Env    string       `yaml:"env" env:"ENV" env-default:"local"`
	HTTP   HTTPConfig   `yaml:"http"`
	API    APIConfig    `yaml:"api"`
	OAuth  OAuthConfig  `yaml:"oauth"`
	Tokens TokensConfig `yaml:"tokens"`
}

// HTTPConfig — сетевые настройки собственного HTTP-сервера.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"50090"`
	// Timeout — общий дедлайн обработки одного входящего запроса.
	Timeout time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"30s"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// APIConfig — параметры обращения к backend-API платформы.
//
// BaseURL — host-уровневый URL backend-а (с завершающим "/"); префикс
// api/v1/ добавляет клиент. StartupsPath — путь листинга стартапов
// относительно префикса. RefreshTimeout ограничивает вызов обновления
// токена отдельно: зависший refresh задержал бы всех ожидающих.
type APIConfig struct {
	BaseURL        string        `yaml:"base_url" env:"API_BASE_URL" env-required:"true"`
	StartupsPath   string        `yaml:"startups_path" env:"API_STARTUPS_PATH" env-default:"startups/"`
	Timeout        time.Duration `yaml:"timeout" env:"API_TIMEOUT" env-default:"15s"`
	RefreshTimeout time.Duration `yaml:"refresh_timeout" env:"API_REFRESH_TIMEOUT" env-default:"10s"`
	UserAgent      string        `yaml:"user_agent" env:"API_USER_AGENT" env-default:"forum-web-client"`
}

// OAuthConfig — параметры социального входа.
//
// ClientID — client_id приложения на backend-е для convert-token;
// Google/Github client id используются при сборке authorize-URL;
// RedirectURI — адрес страницы /oauth2callback/ этого клиента.
type OAuthConfig struct {
	ClientID       string `yaml:"client_id" env:"SOCIALAUTH_CLIENT_ID" env-required:"true"`
	GoogleClientID string `yaml:"google_client_id" env:"GOOGLE_CLIENT_ID"`
	GithubClientID string `yaml:"github_client_id" env:"GITHUB_CLIENT_ID"`
	RedirectURI    string `yaml:"redirect_uri" env:"OAUTH_REDIRECT_URI" env-required:"true"`
}

// TokensConfig — сроки жизни токенов; задают max-age cookie.
type TokensConfig struct {
	AccessTTL  time.Duration `yaml:"access_ttl" env:"ACCESS_TOKEN_TTL" env-default:"20m"`
	RefreshTTL time.Duration `yaml:"refresh_ttl" env:"REFRESH_TOKEN_TTL" env-default:"24h"`
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
// После чтения файла ENV-переменные накладываются поверх значений из YAML.
func Load(path string) (*Config, error) {
	var cfg Config

	tryRead := func(p string) (*Config, error) {
		if p == "" {
			return nil, fmt.Errorf("empty config path")
		}

		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file does not exist: %q: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return &cfg, nil
	}

	// 1) Явный путь.
	if path != "" {
		return tryRead(path)
	}

	// 2) CONFIG_PATH.
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return tryRead(envPath)
	}

	// 3) ./local.yaml.
	if _, err := os.Stat("local.yaml"); err == nil {
		return tryRead("local.yaml")
	}

	// 4) Только ENV.
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	return &cfg, nil
}
