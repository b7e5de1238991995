package config

import "os"

type Config struct {
	DatabaseURL string
	JWTSecret   string
	Port        string
	RedisURL    string
	ShopName    string
}

func Load() *Config {
	return &Config{
		DatabaseURL: getEnv("DATABASE_URL", "shopdesk.db"),
		JWTSecret:   getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		Port:        getEnv("PORT", "8080"),
		RedisURL:    getEnv("REDIS_URL", ""),
		ShopName:    getEnv("SHOP_NAME", "Shopdesk Auto"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
