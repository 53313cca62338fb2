package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type fileConfig struct {
	DatabaseURL string `yaml:"database_url"`
	RedisURL    string `yaml:"redis_url"`
	ServerPort  string `yaml:"server_port"`
	UserAgent   string `yaml:"user_agent"`
	Timeout     string `yaml:"timeout"`
	LogLevel    string `yaml:"log_level"`
	AutoUpdate  string `yaml:"auto_update"`
}

// LoadFromFile loads config from a YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseFile(data)
}

func parseFile(data []byte) (*Config, error) {
	var f fileConfig
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c := &Config{
		DatabaseURL: f.DatabaseURL,
		RedisURL:    f.RedisURL,
		ServerPort:  f.ServerPort,
		UserAgent:   f.UserAgent,
		LogLevel:    f.LogLevel,
	}
	if f.Timeout != "" {
		if d, err := time.ParseDuration(f.Timeout); err == nil {
			c.Timeout = d
		}
	}
	freq, err := ParseUpdateFrequency(f.AutoUpdate)
	if err != nil {
		return nil, err
	}
	c.AutoUpdate = freq
	c.applyDefaults()
	return c, nil
}
