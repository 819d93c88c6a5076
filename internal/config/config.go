package config

import (
	"bytes"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Bind string `yaml:"bind"`
		Port int    `yaml:"port"`
	} `yaml:"app"`

	Backend struct {
		Host           string  `yaml:"host"`
		TimeoutSeconds int     `yaml:"timeout_seconds"` // 0 = no timeout
		RatePerSecond  float64 `yaml:"rate_per_second"` // 0 = unlimited
		Burst          int     `yaml:"burst"`
	} `yaml:"backend"`

	Render struct {
		LinkOrigin string `yaml:"link_origin"`
	} `yaml:"render"`

	Sessions struct {
		IdleMinutes  int `yaml:"idle_minutes"`
		SweepSeconds int `yaml:"sweep_seconds"`
	} `yaml:"sessions"`

	Diagnostics struct {
		Enabled       bool `yaml:"enabled"`
		RetentionDays int  `yaml:"retention_days"`
	} `yaml:"diagnostics"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

func Default() Config {
	var cfg Config
	cfg.App.Bind = "127.0.0.1"
	cfg.App.Port = 38471
	cfg.Render.LinkOrigin = "https://angel.co"
	cfg.Sessions.IdleMinutes = 30
	cfg.Sessions.SweepSeconds = 60
	cfg.Diagnostics.Enabled = true
	cfg.Diagnostics.RetentionDays = 30
	cfg.Log.Level = "info"
	return cfg
}

// Load reads path over the defaults. Unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
