package main

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	LogLevel string `env:"LOG_LEVEL,default=INFO"`
	Host     string `env:"HOST,default=0.0.0.0"`
	Port     int    `env:"PORT,default=8080"`

	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath  string `env:"BLUGE_FILEPATH,required=true"`

	JwtSecret         string        `env:"JWT_SECRET,required=true"`
	JwtIssuer         string        `env:"JWT_ISSUER,default=social-chat"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`

	NumberOfWorkers    int           `env:"NUMBER_OF_WORKERS,default=8"`
	BufferSize         int           `env:"BUFFER_SIZE,default=1024"`
	SinkTimeout        time.Duration `env:"SINK_TIMEOUT,default=2s"`
	RestartInterval    time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	MetricInterval     time.Duration `env:"METRIC_INTERVAL,default=10s"`
	ActionErrorReplies bool          `env:"ACTION_ERROR_REPLIES,default=true"`

	CharReplacement string `env:"CHARACTER_REPLACEMENT,default=*"`
	CensoredDir     string `env:"CENSORED_DIR"`

	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=256"`
	MaxMessageSize       int64         `env:"MAX_MESSAGE_SIZE,default=65536"`
	RateBurst            int           `env:"WS_RATE_BURST,default=20"`
	RateInterval         time.Duration `env:"WS_RATE_INTERVAL,default=1s"`
	AllowedOrigins       string        `env:"ALLOWED_ORIGINS,default=*"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
}

func (c Config) Origins() []string {
	return strings.Split(c.AllowedOrigins, ",")
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
