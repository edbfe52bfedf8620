package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Role selects which side of the protocol a peer plays.
type Role string

const (
	RoleSink   Role = "sink"
	RoleSource Role = "source"
)

// Config holds the settings a wfdsink/wfdsource peer needs at startup.
// Values are seeded with defaults, then set from command-line flags, and
// finally overridden by an .env-style file when one is given.
type Config struct {
	Role Role

	ListenAddr string
	DialAddr   string

	RTPPortMin uint16
	RTPPortMax uint16

	KeepaliveSeconds         int
	InactivityTimeoutSeconds int
}

// Default returns a Config with the library's baseline settings for the
// given role.
func Default(role Role) *Config {
	return &Config{
		Role:                     role,
		RTPPortMin:               19000,
		RTPPortMax:               19999,
		KeepaliveSeconds:         30,
		InactivityTimeoutSeconds: 30,
	}
}

// Load reads key=value overrides from an .env-style file into cfg.
// Unknown keys are ignored; this mirrors the permissive parsing the
// reference relay's own config loader uses for its credential file.
func Load(envPath string, cfg *Config) error {
	file, err := os.Open(envPath)
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch key {
		case "role":
			cfg.Role = Role(value)
		case "listen_addr":
			cfg.ListenAddr = value
		case "dial_addr":
			cfg.DialAddr = value
		case "rtp_port_min":
			if n, err := strconv.ParseUint(value, 10, 16); err == nil {
				cfg.RTPPortMin = uint16(n)
			}
		case "rtp_port_max":
			if n, err := strconv.ParseUint(value, 10, 16); err == nil {
				cfg.RTPPortMax = uint16(n)
			}
		case "keepalive_seconds":
			if n, err := strconv.Atoi(value); err == nil {
				cfg.KeepaliveSeconds = n
			}
		case "inactivity_timeout_seconds":
			if n, err := strconv.Atoi(value); err == nil {
				cfg.InactivityTimeoutSeconds = n
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan config file: %w", err)
	}
	return nil
}

// Validate checks the fields required to start a peer of cfg.Role.
func (c *Config) Validate() error {
	switch c.Role {
	case RoleSink:
		if c.ListenAddr == "" {
			return fmt.Errorf("sink requires listen_addr")
		}
	case RoleSource:
		if c.DialAddr == "" {
			return fmt.Errorf("source requires dial_addr")
		}
	default:
		return fmt.Errorf("unknown role %q", c.Role)
	}
	if c.RTPPortMin > c.RTPPortMax {
		return fmt.Errorf("rtp_port_min %d exceeds rtp_port_max %d", c.RTPPortMin, c.RTPPortMax)
	}
	return nil
}
