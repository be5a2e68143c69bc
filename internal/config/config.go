package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	API struct {
		BaseURL     string `yaml:"baseUrl"`
		Timeout     string `yaml:"timeout"`
		CategoryTTL string `yaml:"categoryTtl"`
	} `yaml:"api"`
	Redis struct {
		Addr      string `yaml:"addr"`
		Password  string `yaml:"password"`
		DB        int    `yaml:"db"`
		TTL       string `yaml:"ttl"`
		Namespace string `yaml:"namespace"`
	} `yaml:"redis"`
	Quiz struct {
		Scoring string `yaml:"scoring"` // "points" or "simple"
		Layout  string `yaml:"layout"`  // "classic" or "panel"
		Timing  struct {
			QuestionSeconds int    `yaml:"questionSeconds"`
			TickInterval    string `yaml:"tickInterval"`
			FeedbackHold    string `yaml:"feedbackHold"`
			TransitionShow  string `yaml:"transitionShow"`
			TransitionFade  string `yaml:"transitionFade"`
			InitialPause    string `yaml:"initialPause"`
		} `yaml:"timing"`
	} `yaml:"quiz"`
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

// TTLDuration parses a duration string or returns the fallback if empty or
// malformed.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
