package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type Configs struct {
	Env string `toml:"env"`

	Database  DatabaseConfigs  `toml:"database"`
	ApiServer APIServerConfigs `toml:"api_server"`
	Auth      AuthConfigs      `toml:"auth"`
	Redis     RedisConfigs     `toml:"redis"`
	Kafka     KafkaConfigs     `toml:"kafka"`
	LogLevel  string           `toml:"log_level"`
}

type DatabaseConfigs struct {
	Driver   string `toml:"driver"`
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Database string `toml:"database"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	LogLevel string `toml:"log_level"`
}

func (d *DatabaseConfigs) ConnectionString() string {
	switch d.Driver {
	case "postgres":
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			d.Host,
			d.User,
			d.Password,
			d.Database,
			d.Port,
		)
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			d.User,
			d.Password,
			d.Host,
			d.Port,
			d.Database,
		)
	}
}

type APIServerConfigs struct {
	ServerConfigs
	MaxLimit     int      `toml:"max_limit"`
	DefaultLimit int      `toml:"default_limit"`
	AllowOrigins []string `toml:"allow_origins"`
}

type ServerConfigs struct {
	Host string `toml:"host"`
	Port string `toml:"port"`
	Cert string `toml:"cert"`
	Key  string `toml:"key"`
}

type AuthConfigs struct {
	TokenSecret string       `toml:"token_secret"`
	AccessToken TokenConfigs `toml:"access_token"`
}

type TokenConfigs struct {
	Name       string        `toml:"name"`
	Expiration time.Duration `toml:"expiration"`
}

type RedisConfigs struct {
	Enable bool   `toml:"enable"`
	Addr   string `toml:"addr"`

	// PopularTTL bounds how long the cached ranking may drift from the
	// database before it is rebuilt.
	PopularTTL time.Duration `toml:"popular_ttl"`
}

type KafkaConfigs struct {
	Enable   bool   `toml:"enable"`
	Addr     string `toml:"addr"`
	ClientID string `toml:"client_id"`
}

func Default() Configs {
	return Configs{
		Env: "local",
		Database: DatabaseConfigs{
			Driver:   "mysql",
			Host:     "localhost",
			Port:     "3306",
			Database: "medalboard",
			User:     "mysql",
			LogLevel: "error",
		},
		ApiServer: APIServerConfigs{
			ServerConfigs: ServerConfigs{Host: "localhost", Port: "8080"},
			MaxLimit:      50,
			DefaultLimit:  10,
		},
		Auth: AuthConfigs{
			AccessToken: TokenConfigs{Name: "access_token", Expiration: 5 * time.Minute},
		},
		Redis:    RedisConfigs{Addr: "localhost:6379", PopularTTL: time.Hour},
		Kafka:    KafkaConfigs{Addr: "localhost:9092", ClientID: "medalboard"},
		LogLevel: "info",
	}
}

// Load reads the TOML file at path (if any) over the defaults, then applies
// environment overrides. A .env file in the working directory is loaded first.
func Load(path string) (Configs, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("cannot decode config file %s: %w", path, err)
		}
	}

	overrideString(&cfg.Env, "ENV")
	overrideString(&cfg.LogLevel, "LOG_LEVEL")
	overrideString(&cfg.Database.Driver, "DB_DRIVER")
	overrideString(&cfg.Database.Host, "DB_HOST")
	overrideString(&cfg.Database.Port, "DB_PORT")
	overrideString(&cfg.Database.Database, "DB_NAME")
	overrideString(&cfg.Database.User, "DB_USER")
	overrideString(&cfg.Database.Password, "DB_PASSWORD")
	overrideString(&cfg.ApiServer.Host, "API_HOST")
	overrideString(&cfg.ApiServer.Port, "API_PORT")
	overrideString(&cfg.Auth.TokenSecret, "TOKEN_SECRET")
	overrideString(&cfg.Redis.Addr, "REDIS_ADDRESS")
	overrideString(&cfg.Kafka.Addr, "KAFKA_ADDRESS")

	if v := os.Getenv("ALLOW_ORIGINS"); v != "" {
		cfg.ApiServer.AllowOrigins = strings.Split(v, ",")
	}

	if v := os.Getenv("ACCESS_TOKEN_DURATION"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid ACCESS_TOKEN_DURATION: %w", err)
		}
		cfg.Auth.AccessToken.Expiration = d
	}

	if cfg.Auth.TokenSecret == "" {
		return cfg, fmt.Errorf("token secret is required")
	}

	return cfg, nil
}

func overrideString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}
