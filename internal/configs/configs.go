/*
Package configs is responsible for loading and parsing the application's configuration settings.

It configures the realtime hub by reading operating system environment variables,
including the running environment, port, CORS allowed origins, heartbeat timing,
and the optional Redis relay used for multi-process deployments.
*/
package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AppConfig contains all configuration parameters required for the hub to run.
// All configuration values are loaded from environment variables.
type AppConfig struct {
	// General Server Settings
	Environment string
	Port        int

	// Security Settings
	AllowedOrigins []string
	JWTSecret      string
	ServiceKey     string

	// Hub Settings
	HeartbeatInterval time.Duration
	SendQueueSize     int
	NodeID            string

	// Relay Settings. An empty RedisAddr disables the cross-process relay.
	RedisAddr    string
	RelayChannel string
}

// LoadConfig reads and parses the application configuration from environment variables.
// It provides development defaults and requires security-sensitive values in any
// other environment. It returns a pointer to the AppConfig struct and any error encountered.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}

	// --- General Server Settings ---
	cfg.Environment = os.Getenv("ENVIRONMENT")
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT environment variable: %w", err)
	}
	cfg.Port = port

	if cfg.Port < 1024 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port number %d is outside the recommended range (%d-%d) to avoid privileged ports", cfg.Port, 1024, 65535)
	}

	// --- Security Settings ---
	originsStr := os.Getenv("ALLOWED_ORIGINS")
	if originsStr != "" {
		for _, origin := range strings.Split(originsStr, ",") {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
			}
		}
	} else {
		cfg.AllowedOrigins = []string{}
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if cfg.Environment == "development" {
		if jwtSecret == "" {
			jwtSecret = "your_default_insecure_secret_key_change_me"
		}
	} else {
		if jwtSecret == "" {
			return nil, fmt.Errorf("JWT_SECRET environment variable is required in %s environment for security", cfg.Environment)
		}
	}
	cfg.JWTSecret = jwtSecret

	serviceKey := os.Getenv("SERVICE_KEY")
	if cfg.Environment == "development" {
		if serviceKey == "" {
			serviceKey = "dev_service_key_change_me"
		}
	} else {
		if serviceKey == "" {
			return nil, fmt.Errorf("SERVICE_KEY environment variable is required in %s environment for security", cfg.Environment)
		}
	}
	cfg.ServiceKey = serviceKey

	// --- Hub Settings ---
	heartbeatStr := os.Getenv("HEARTBEAT_INTERVAL_SECONDS")
	if heartbeatStr == "" {
		heartbeatStr = "30"
	}
	heartbeatSeconds, err := strconv.Atoi(heartbeatStr)
	if err != nil || heartbeatSeconds <= 0 {
		return nil, fmt.Errorf("invalid HEARTBEAT_INTERVAL_SECONDS environment variable: %q", heartbeatStr)
	}
	cfg.HeartbeatInterval = time.Duration(heartbeatSeconds) * time.Second

	queueStr := os.Getenv("SEND_QUEUE_SIZE")
	if queueStr == "" {
		queueStr = "256"
	}
	queueSize, err := strconv.Atoi(queueStr)
	if err != nil || queueSize <= 0 {
		return nil, fmt.Errorf("invalid SEND_QUEUE_SIZE environment variable: %q", queueStr)
	}
	cfg.SendQueueSize = queueSize

	cfg.NodeID = os.Getenv("NODE_ID")
	if cfg.NodeID == "" {
		cfg.NodeID = uuid.New().String()
	}

	// --- Relay Settings ---
	cfg.RedisAddr = os.Getenv("REDIS_ADDR")

	cfg.RelayChannel = os.Getenv("RELAY_CHANNEL")
	if cfg.RelayChannel == "" {
		cfg.RelayChannel = "venturehub.relay"
	}

	return cfg, nil
}
