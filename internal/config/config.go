package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mahmoud375/peace-cake/internal/domain"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		TTL string `yaml:"ttl"`
	} `yaml:"quiz"`
	Game struct {
		PrimaryTimerSeconds int     `yaml:"primary_timer_seconds"`
		StealTimerSeconds   int     `yaml:"steal_timer_seconds"`
		StealPointsFactor   float64 `yaml:"steal_points_factor"`
		MinTeams            int     `yaml:"min_teams"`
		MaxTeams            int     `yaml:"max_teams"`
	} `yaml:"game"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Rules maps the game section onto the engine's parameter record. Unset
// fields fall back to the stock defaults (20s reveal, 5s steal, half points,
// 2-4 teams).
func (c Config) Rules() domain.Rules {
	defaults := domain.DefaultRules()
	rules := domain.Rules{
		PrimaryTimerSeconds: c.Game.PrimaryTimerSeconds,
		StealTimerSeconds:   c.Game.StealTimerSeconds,
		StealPointsFactor:   c.Game.StealPointsFactor,
		MinTeams:            c.Game.MinTeams,
		MaxTeams:            c.Game.MaxTeams,
	}
	if rules.PrimaryTimerSeconds <= 0 {
		rules.PrimaryTimerSeconds = defaults.PrimaryTimerSeconds
	}
	if rules.StealTimerSeconds <= 0 {
		rules.StealTimerSeconds = defaults.StealTimerSeconds
	}
	if rules.StealPointsFactor <= 0 {
		rules.StealPointsFactor = defaults.StealPointsFactor
	}
	if rules.MinTeams <= 0 {
		rules.MinTeams = defaults.MinTeams
	}
	if rules.MaxTeams <= 0 {
		rules.MaxTeams = defaults.MaxTeams
	}
	return rules
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
