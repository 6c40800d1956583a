// Package config предоставялет структуры и функции для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env             string `yaml:"env" env:"ENV" env-default:"local"`
	StoragePath     string `yaml:"storage_path" env:"STORAGE_PATH" env-default:"./db.json"`
	PasswordHashing bool   `yaml:"password_hashing" env:"PASSWORD_HASHING"`
	HTTPServer      `yaml:"http_server"`
	LoginRateLimit  `yaml:"login_rate_limit"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	Host        string        `yaml:"host" env:"HOST"`
	Port        int           `yaml:"port" env:"PORT" env-default:"3000"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env:"HTTP_TIMEOUT" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

// LoginRateLimit ограничивает частоту запросов на /api/login.
// RPS == 0 отключает ограничение.
type LoginRateLimit struct {
	RPS   float64 `yaml:"rps" env:"LOGIN_RATE_RPS"`
	Burst int     `yaml:"burst" env:"LOGIN_RATE_BURST" env-default:"5"`
}

// Address возвращает адрес для net.Listen.
func (s HTTPServer) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Load читает конфиг из файла path (если задан) и переменных окружения.
// При пустом path используются только переменные окружения и значения по умолчанию.
func Load(path string) (*Config, error) {
	const op = "config.Load"
	var cfg Config

	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return &cfg, nil
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// MustLoad загружает конфиг по пути из CONFIG_PATH, завершая процесс при ошибке
func MustLoad() *Config {
	cfg, err := Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"StoragePath: %s\n"+
			"PasswordHashing: %t\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"LoginRateLimit:\n"+
			"  RPS: %g\n"+
			"  Burst: %d\n",
		c.Env,
		c.StoragePath,
		c.PasswordHashing,
		c.Address(),
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.RPS,
		c.Burst,
	)
}
