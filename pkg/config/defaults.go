// Package config provides centralized default values for the lesson engine.
package config

import (
	"bufio"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var envLoaded sync.Once

func loadEnvFile() {
	envLoaded.Do(func() {
		file, err := os.Open(".env")
		if err != nil {
			return
		}
		defer file.Close()

		log.Println("Loading configuration overrides from .env file...")
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())

			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				continue
			}

			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])

			if os.Getenv(key) == "" {
				os.Setenv(key, value)
			}
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.ParseBool(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%t (default: %t)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

var (
	// Server Configuration
	Port               string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration

	// Lesson Content
	LessonDirectory string

	// Session Management
	MaxSessions     int
	SessionTTL      time.Duration
	CleanupInterval time.Duration

	// SSE Configuration
	MaxSessionConnections       int
	SSEHeartbeatIntervalSeconds int
	SSEInactivityTimeoutMinutes int

	// Logging
	LogDirectory    string
	LogToFile       bool
	LogToConsole    bool
	LogJSONFormat   bool
	DefaultLogLevel string

	// Performance
	PerfCleanupInterval time.Duration

	// SysOp Dashboard
	SysopPassword string
)

func init() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)

	// Lesson Content
	LessonDirectory = getEnvString("LESSON_DIRECTORY", "lessons")

	// Session Management
	MaxSessions = getEnvInt("MAX_SESSIONS", 5000)
	SessionTTL = time.Duration(getEnvInt("SESSION_TTL_HOURS", 4)) * time.Hour
	CleanupInterval = time.Duration(getEnvInt("SESSION_CLEANUP_INTERVAL_MINUTES", 15)) * time.Minute

	// SSE Configuration
	MaxSessionConnections = getEnvInt("MAX_SESSION_CONNECTIONS", 3)
	SSEHeartbeatIntervalSeconds = getEnvInt("SSE_HEARTBEAT_INTERVAL_SECONDS", 30)
	SSEInactivityTimeoutMinutes = getEnvInt("SSE_INACTIVITY_TIMEOUT_MINUTES", 5)

	// Logging
	LogDirectory = getEnvString("LOG_DIRECTORY", "logs")
	LogToFile = getEnvBool("LOG_TO_FILE", false)
	LogToConsole = getEnvBool("LOG_TO_CONSOLE", true)
	LogJSONFormat = getEnvBool("LOG_JSON_FORMAT", true)
	DefaultLogLevel = getEnvString("LOG_LEVEL", "info")

	// Performance
	PerfCleanupInterval = time.Duration(getEnvInt("PERF_CLEANUP_INTERVAL_MINUTES", 10)) * time.Minute

	// SysOp Dashboard
	SysopPassword = getEnvString("SYSOP_PASSWORD", "")
}
