// Package ws is the websocket transport: it turns an authenticated HTTP request
// into a connection bound in the registry and feeds its frames to the action queue.
package ws

import "time"

type Config struct {
	SendBuffer     int
	MaxMessageSize int64
	PongWait       time.Duration
	PingInterval   time.Duration
	WriteWait      time.Duration
	RateBurst      int
	RateInterval   time.Duration
	AllowedOrigins []string
	ReplyErrors    bool
}

// DefaultConfig matches what browsers and proxies usually tolerate:
// pings come before the pong deadline expires.
func DefaultConfig() Config {
	return Config{
		SendBuffer:     256,
		MaxMessageSize: 64 * 1024,
		PongWait:       60 * time.Second,
		PingInterval:   54 * time.Second,
		WriteWait:      10 * time.Second,
		RateBurst:      20,
		RateInterval:   time.Second,
		AllowedOrigins: []string{"*"},
		ReplyErrors:    true,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.SendBuffer <= 0 {
		c.SendBuffer = d.SendBuffer
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = d.MaxMessageSize
	}
	if c.PongWait <= 0 {
		c.PongWait = d.PongWait
	}
	if c.PingInterval <= 0 || c.PingInterval >= c.PongWait {
		c.PingInterval = c.PongWait * 9 / 10
	}
	if c.WriteWait <= 0 {
		c.WriteWait = d.WriteWait
	}
	if c.RateBurst <= 0 {
		c.RateBurst = d.RateBurst
	}
	if c.RateInterval <= 0 {
		c.RateInterval = d.RateInterval
	}
	return c
}
