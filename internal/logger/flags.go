package logger

import (
	"flag"
	"fmt"
	"strings"
)

// Flags holds logging-related command-line flags shared by wfdsink and
// wfdsource.
type Flags struct {
	LogLevel       string
	LogFormat      string
	LogFile        string
	DebugCodec     bool
	DebugFramer    bool
	DebugSession   bool
	DebugTransport bool
	DebugMedia     bool
	DebugAll       bool
}

// RegisterFlags registers logging flags with fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}

	fs.StringVar(&f.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	fs.StringVar(&f.LogLevel, "l", "info", "Log level (shorthand)")

	fs.StringVar(&f.LogFormat, "log-format", "text", "Log output format: text, json")

	fs.StringVar(&f.LogFile, "log-file", "", "Log output file path (default: stdout)")
	fs.StringVar(&f.LogFile, "o", "", "Log output file path (shorthand)")

	fs.BoolVar(&f.DebugCodec, "debug-codec", false, "Enable wire codec parse/serialize debugging")
	fs.BoolVar(&f.DebugFramer, "debug-framer", false, "Enable input framer boundary debugging")
	fs.BoolVar(&f.DebugSession, "debug-session", false, "Enable session state machine debugging")
	fs.BoolVar(&f.DebugTransport, "debug-transport", false, "Enable raw transport send/receive debugging")
	fs.BoolVar(&f.DebugMedia, "debug-media", false, "Enable RTP/RTCP media manager debugging")
	fs.BoolVar(&f.DebugAll, "debug-all", false, "Enable all debug categories")

	return f
}

// ToConfig converts Flags to a logger Config.
func (f *Flags) ToConfig() (*Config, error) {
	cfg := NewConfig()

	level, err := ParseLevel(f.LogLevel)
	if err != nil {
		return nil, err
	}
	cfg.Level = level

	format, err := ParseFormat(f.LogFormat)
	if err != nil {
		return nil, err
	}
	cfg.Format = format

	cfg.OutputFile = f.LogFile

	if f.DebugAll {
		cfg.EnableCategory(DebugAll)
		cfg.Level = LevelDebug
	} else {
		if f.DebugCodec {
			cfg.EnableCategory(DebugCodec)
			cfg.Level = LevelDebug
		}
		if f.DebugFramer {
			cfg.EnableCategory(DebugFramer)
			cfg.Level = LevelDebug
		}
		if f.DebugSession {
			cfg.EnableCategory(DebugSession)
			cfg.Level = LevelDebug
		}
		if f.DebugTransport {
			cfg.EnableCategory(DebugTransport)
			cfg.Level = LevelDebug
		}
		if f.DebugMedia {
			cfg.EnableCategory(DebugMedia)
			cfg.Level = LevelDebug
		}
	}

	return cfg, nil
}

// String renders the enabled flags for a one-line startup log message.
func (f *Flags) String() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("level=%s", f.LogLevel))
	parts = append(parts, fmt.Sprintf("format=%s", f.LogFormat))
	if f.LogFile != "" {
		parts = append(parts, fmt.Sprintf("output=%s", f.LogFile))
	} else {
		parts = append(parts, "output=stdout")
	}

	var categories []string
	if f.DebugAll {
		categories = append(categories, "all")
	} else {
		if f.DebugCodec {
			categories = append(categories, "codec")
		}
		if f.DebugFramer {
			categories = append(categories, "framer")
		}
		if f.DebugSession {
			categories = append(categories, "session")
		}
		if f.DebugTransport {
			categories = append(categories, "transport")
		}
		if f.DebugMedia {
			categories = append(categories, "media")
		}
	}
	if len(categories) > 0 {
		parts = append(parts, fmt.Sprintf("debug=[%s]", strings.Join(categories, ",")))
	}

	return strings.Join(parts, " ")
}
