// cmd/worker/startup.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// startServices performs health checks and starts the probe endpoint
func startServices(cfg *Config) error {
	log.Println("============================================")
	log.Println("🏋️  CoachHub Worker Starting...")
	log.Println("============================================")

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log.Println("⏳ Checking Redis Connection...")
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("❌ Redis Connection: %v\n", err)
		return fmt.Errorf("redis connection failed: %w", err)
	}
	log.Println("✓ Redis Connection: OK")

	go startHealthCheckServer(cfg.HealthPort)

	return nil
}

// startHealthCheckServer starts HTTP server for health checks
func startHealthCheckServer(port string) {
	http.HandleFunc("/health", healthCheckHandler)
	http.HandleFunc("/ready", readyCheckHandler)

	log.Printf("[Health] Starting health check server on :%s", port)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Printf("[Health] Failed to start: %v\n", err)
	}
}

// healthCheckHandler handles /health endpoint
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"UP","service":"coachhub-worker"}`))
}

// readyCheckHandler handles /ready endpoint (Kubernetes readiness probe)
func readyCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"READY"}`))
}
