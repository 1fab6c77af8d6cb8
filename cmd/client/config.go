package main

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Addr  string `envconfig:"CHAT_ADDR" default:"ws://localhost:8080/ws"`
	Token string `envconfig:"CHAT_TOKEN" required:"true"`
	// CHAT_COLOURS enables colorized output for better readability
	Colours bool `envconfig:"CHAT_COLOURS" default:"true"`
	// CHAT_DEBUG_JSON prints raw frames instead of the short rendering
	DebugJSON bool `envconfig:"CHAT_DEBUG_JSON" default:"false"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
