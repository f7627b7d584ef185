package main

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// config is parsed from the environment. The cache root normally lives in a
// privileged location provisioned at install time; CI machines don't have it,
// so CI=true relocates the default to /tmp, and EMOJI_CACHE_PATH overrides
// everything.
type config struct {
	CachePath string `env:"EMOJI_CACHE_PATH"`
	CI        bool   `env:"CI"`
}

func loadConfig() (*config, error) {
	cfg := &config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (c *config) cacheRoot() string {
	if c.CachePath != "" {
		return c.CachePath
	}
	if c.CI {
		return "/tmp/emoji-cache"
	}
	return "/srv/emoji-cache"
}
