package utils

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

func GetEnvDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetEnvInt は整数の環境変数を読みます。未設定か不正なら defaultValue です。
func GetEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("invalid integer env", "key", key, "value", value)
		return defaultValue
	}
	return n
}

// GetEnvBool は真偽値の環境変数を読みます。未設定か不正なら defaultValue です。
func GetEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		slog.Warn("invalid bool env", "key", key, "value", value)
		return defaultValue
	}
	return b
}

// GetEnvDuration は "150ms" のような期間の環境変数を読みます。未設定か不正なら defaultValue です。
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("invalid duration env", "key", key, "value", value)
		return defaultValue
	}
	return d
}
