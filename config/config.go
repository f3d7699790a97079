package config

import "os"

type Config struct {
	Env       string
	App       AppConfig
	DB        DBConfig
	JWTSecret string
}

// AppConfig describes where this process is reachable. The conversion
// attribution trigger calls the service back on this address.
type AppConfig struct {
	Host string
	Port string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

func Load() *Config {
	return &Config{
		Env:       getEnv("ENV", "production"),
		JWTSecret: getEnv("JWT_SECRET", "cylink-dev-secret-change-me"),
		App: AppConfig{
			Host: getEnv("APP_HOST", "localhost"),
			Port: getEnv("APP_PORT", "8080"),
		},
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "127.0.0.1"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "cylink"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "cylink"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
