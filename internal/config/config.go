package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// UpdateFrequency controls automatic playlist refreshes.
type UpdateFrequency string

const (
	UpdateOff        UpdateFrequency = "off"
	UpdateStartup    UpdateFrequency = "startup"
	UpdateDaily      UpdateFrequency = "daily"
	UpdateEvery2Days UpdateFrequency = "every2days"
)

// ParseUpdateFrequency accepts off, startup, daily and every2days (empty means off).
func ParseUpdateFrequency(s string) (UpdateFrequency, error) {
	switch f := UpdateFrequency(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return UpdateOff, nil
	case UpdateOff, UpdateStartup, UpdateDaily, UpdateEvery2Days:
		return f, nil
	}
	return "", fmt.Errorf("invalid auto update frequency %q (use off, startup, daily or every2days)", s)
}

// Config holds application configuration. Without DatabaseURL playlists are
// kept in memory; without RedisURL caching, locking and the job queue are off.
type Config struct {
	DatabaseURL string          `yaml:"database_url" env:"DATABASE_URL"`
	RedisURL    string          `yaml:"redis_url" env:"REDIS_URL"`
	ServerPort  string          `yaml:"server_port" env:"SERVER_PORT"`
	UserAgent   string          `yaml:"user_agent" env:"FETCHER_USER_AGENT"`
	Timeout     time.Duration   `yaml:"timeout" env:"FETCHER_TIMEOUT"`
	LogLevel    string          `yaml:"log_level" env:"LOG_LEVEL"`
	AutoUpdate  UpdateFrequency `yaml:"auto_update" env:"AUTO_UPDATE"`
}

const (
	defaultPort      = "8080"
	defaultUserAgent = "PopcornPlayer/1.0"
	defaultTimeout   = 30 * time.Second
	defaultLogLevel  = "info"
)

// Load builds config from environment variables, after filling unset
// variables from .env.local and .env.
func Load() (*Config, error) {
	loadEnvFiles()
	c := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		ServerPort:  os.Getenv("SERVER_PORT"),
		UserAgent:   os.Getenv("FETCHER_USER_AGENT"),
		LogLevel:    os.Getenv("LOG_LEVEL"),
	}
	if s := os.Getenv("FETCHER_TIMEOUT"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			c.Timeout = d
		}
	}
	f, err := ParseUpdateFrequency(os.Getenv("AUTO_UPDATE"))
	if err != nil {
		return nil, err
	}
	c.AutoUpdate = f
	c.applyDefaults()
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.ServerPort == "" {
		c.ServerPort = defaultPort
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.AutoUpdate == "" {
		c.AutoUpdate = UpdateOff
	}
}
