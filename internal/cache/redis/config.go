package redis

import "time"

// Config holds connection settings. Zero timeouts fall back to go-redis defaults.
type Config struct {
	Addr         string
	Password     string
	DB           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}
