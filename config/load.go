package config

import (
	"log/slog"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Load reads an optional YAML file and layers environment variables on
// top of it. Env always wins; DATABASE_URL and JWT_SECRET must come
// from one of the two.
func Load(path string) App {
	var cfg App
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			slog.Error("config file unreadable", "path", path, "err", err)
			panic("cannot read config " + path)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			slog.Error("config file invalid", "path", path, "err", err)
			panic("cannot parse config " + path)
		}
	}

	cfg.Port = getenv("APP_PORT", or(cfg.Port, "8080"))
	cfg.DatabaseURL = getenv("DATABASE_URL", cfg.DatabaseURL)
	cfg.JWTSecret = getenv("JWT_SECRET", cfg.JWTSecret)
	cfg.AccessTTLHours = getenvInt("ACCESS_TTL_HOURS", orInt(cfg.AccessTTLHours, 1))
	cfg.RefreshTTLHours = getenvInt("REFRESH_TTL_HOURS", orInt(cfg.RefreshTTLHours, 168))
	cfg.Env = getenv("APP_ENV", or(cfg.Env, "dev"))

	for k, v := range map[string]string{
		"DATABASE_URL": cfg.DatabaseURL,
		"JWT_SECRET":   cfg.JWTSecret,
	} {
		if v == "" {
			slog.Error("required config missing", "key", k)
			panic("missing config " + k)
		}
	}
	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func or(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func orInt(v, def int) int {
	if v != 0 {
		return v
	}
	return def
}
