package config

import (
	"fmt"
	"strings"
	"time"
)

// ServerTimeouts are the parsed server.* durations.
type ServerTimeouts struct {
	Read     time.Duration
	Write    time.Duration
	Idle     time.Duration
	Shutdown time.Duration
	Request  time.Duration
}

// Timeouts parses every server duration, using the defaults for blank
// values.
func (c ServerConfig) Timeouts() (ServerTimeouts, error) {
	var (
		t   ServerTimeouts
		err error
	)
	fields := []struct {
		key   string
		value string
		def   string
		dst   *time.Duration
	}{
		{"server.read_timeout", c.ReadTimeout, DefaultServerReadTimeout, &t.Read},
		{"server.write_timeout", c.WriteTimeout, DefaultServerWriteTimeout, &t.Write},
		{"server.idle_timeout", c.IdleTimeout, DefaultServerIdleTimeout, &t.Idle},
		{"server.shutdown_timeout", c.ShutdownTimeout, DefaultServerShutdownTimeout, &t.Shutdown},
		{"server.request_timeout", c.RequestTimeout, DefaultServerRequestTimeout, &t.Request},
	}
	for _, f := range fields {
		if *f.dst, err = DurationOrDefault(f.value, f.def); err != nil {
			return ServerTimeouts{}, fmt.Errorf("%s: %w", f.key, err)
		}
	}
	return t, nil
}

// DurationOrDefault parses value, or defaultValue when value is blank.
// "0" is accepted and means no limit; negative durations are not.
func DurationOrDefault(value string, defaultValue string) (time.Duration, error) {
	candidate := strings.TrimSpace(value)
	if candidate == "" {
		candidate = strings.TrimSpace(defaultValue)
	}
	if candidate == "" {
		return 0, fmt.Errorf("duration value is empty")
	}

	d, err := time.ParseDuration(candidate)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", candidate, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("duration %q must not be negative", candidate)
	}
	return d, nil
}
