package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_CHAT_ADDR is the websocket endpoint of a running server; scenarios are skipped without it
	ChatAddr  string `envconfig:"E2E_CHAT_ADDR"`
	JwtSecret string `envconfig:"JWT_SECRET"`
	JwtIssuer string `envconfig:"JWT_ISSUER" default:"social-chat"`
	// E2E_DEBUG_JSON allows dumping every received frame as JSON
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
