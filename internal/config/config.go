package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Config aggregates every setting the service reads at startup.
type Config struct {
	Server ServerConfig
	Chat   ChatConfig
	Log    LogConfig
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	chat, err := loadChatConfig()
	if err != nil {
		return nil, err
	}

	logCfg, err := loadLogConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Chat: chat, Log: logCfg}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" as-is.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// ChatConfig holds the timing of the simulated counterparty.
type ChatConfig struct {
	QueueDelay    time.Duration
	ReplyDelayMin time.Duration
	ReplyDelayMax time.Duration
}

func loadChatConfig() (ChatConfig, error) {
	queueSeconds, err := parseOptionalIntEnv("QUEUE_DELAY_SECONDS")
	if err != nil {
		return ChatConfig{}, err
	}
	queueDelay := 5 * time.Second
	if queueSeconds != nil {
		if *queueSeconds < 0 {
			return ChatConfig{}, fmt.Errorf("QUEUE_DELAY_SECONDS must not be negative, got %d", *queueSeconds)
		}
		queueDelay = time.Duration(*queueSeconds) * time.Second
	}

	replyMinMs, err := parseOptionalIntEnv("REPLY_DELAY_MIN_MS")
	if err != nil {
		return ChatConfig{}, err
	}
	replyMin := time.Second
	if replyMinMs != nil {
		replyMin = time.Duration(*replyMinMs) * time.Millisecond
	}

	replyMaxMs, err := parseOptionalIntEnv("REPLY_DELAY_MAX_MS")
	if err != nil {
		return ChatConfig{}, err
	}
	replyMax := 3 * time.Second
	if replyMaxMs != nil {
		replyMax = time.Duration(*replyMaxMs) * time.Millisecond
	}

	if replyMin < 0 || replyMax < replyMin {
		return ChatConfig{}, fmt.Errorf("reply delay bounds invalid: min=%s max=%s", replyMin, replyMax)
	}

	return ChatConfig{
		QueueDelay:    queueDelay,
		ReplyDelayMin: replyMin,
		ReplyDelayMax: replyMax,
	}, nil
}

// LogConfig controls the logrus setup.
type LogConfig struct {
	Level logrus.Level
}

func loadLogConfig() (LogConfig, error) {
	raw := getEnvOrDefault("LOG_LEVEL", "info")
	level, err := logrus.ParseLevel(raw)
	if err != nil {
		return LogConfig{}, fmt.Errorf("invalid LOG_LEVEL value %q: %w", raw, err)
	}
	return LogConfig{Level: level}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
