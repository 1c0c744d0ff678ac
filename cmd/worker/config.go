package main

import (
	"log"
	"os"
)

// Config holds all configuration for the worker
type Config struct {
	RedisAddr     string
	RedisPassword string
	HealthPort    string
}

// loadConfig loads configuration from environment variables
func loadConfig() *Config {
	cfg := &Config{
		RedisAddr:     getEnvVariable("REDIS_HOST", "localhost:6379"),
		RedisPassword: getEnvVariable("REDIS_PASSWORD", ""),
		HealthPort:    getEnvVariable("WORKER_HEALTH_PORT", "9999"),
	}

	log.Printf("[Config] Redis: %s, Health port: %s", cfg.RedisAddr, cfg.HealthPort)

	return cfg
}

func getEnvVariable(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
