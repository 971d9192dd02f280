package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	MySQLDSN      string
	RedisURL      string
	JWTSecret     string
	Port          string
	AllowedOrigin string
	RateLimit     int // mutating requests per address per minute
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		if def == "" {
			log.Fatalf("missing env %s", key)
		}
		return def
	}
	return v
}

func Load() Config {
	rl, _ := strconv.Atoi(getenv("RATE_LIMIT", "30"))
	return Config{
		MySQLDSN:      getenv("MYSQL_DSN", "arenagov:arenagov@tcp(127.0.0.1:3306)/arenagov?parseTime=true"),
		RedisURL:      getenv("REDIS_URL", "redis://127.0.0.1:6379/0"),
		JWTSecret:     getenv("JWT_SECRET", ""),
		Port:          getenv("PORT", "8080"),
		AllowedOrigin: getenv("ALLOWED_ORIGIN", "http://localhost:3000"),
		RateLimit:     rl,
	}
}
