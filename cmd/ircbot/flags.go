package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath  string
	LogLevel    string
	LogFormat   string
	Debug       bool
	ShowVersion bool
	Validate    bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	flag.StringVar(&cfg.ConfigPath, "config",
		getEnv("IRCBOT_CONFIG", "configs/ircbot.json"),
		"Path to configuration file (env: IRCBOT_CONFIG)")

	flag.StringVar(&cfg.ConfigPath, "c",
		getEnv("IRCBOT_CONFIG", "configs/ircbot.json"),
		"Path to configuration file (env: IRCBOT_CONFIG)")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("IRCBOT_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: IRCBOT_LOG_LEVEL)")

	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("IRCBOT_LOG_FORMAT", "text"),
		"Log format: json, text (env: IRCBOT_LOG_FORMAT)")

	flag.BoolVar(&cfg.Debug, "debug",
		getEnvBool("IRCBOT_DEBUG", false),
		"Enable debug logging (env: IRCBOT_DEBUG)")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	flag.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	flag.BoolVar(&cfg.Validate, "validate", false, "Validate configuration and exit")

	flag.Parse()

	if cfg.Debug {
		cfg.LogLevel = "debug"
	}
	return cfg
}

func printVersion() {
	fmt.Printf("%s %s\n", appName, Version)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
