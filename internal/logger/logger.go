package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const (
	colorRed     = 31
	colorGreen   = 32
	colorYellow  = 33
	colorMagenta = 35

	colorBold = 1
)

func colorize(s interface{}, c int) string {
	return fmt.Sprintf("\x1b[%dm%v\x1b[0m", c, s)
}

// New creates a logger based on the ENV environment variable. Debug lowers
// the level from info to debug.
func New(debug bool) zerolog.Logger {
	var l zerolog.Logger

	switch env := os.Getenv("ENV"); env {
	case "development", "dev", "":
		l = NewDevelopment(os.Stderr)
	default:
		l = NewProduction(os.Stderr)
	}

	if debug {
		return l.Level(zerolog.DebugLevel)
	}

	return l.Level(zerolog.InfoLevel)
}

// NewDevelopment creates a console logger with coloured level labels.
func NewDevelopment(w io.Writer) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:         w,
		TimeFormat:  "2006-01-02 15:04:05",
		FormatLevel: level,
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// NewProduction creates a JSON logger with UNIX timestamps.
func NewProduction(w io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	return zerolog.New(w).With().Timestamp().Logger()
}

func level(i interface{}) string {
	ll, ok := i.(string)
	if !ok {
		return strings.ToUpper(fmt.Sprintf("%-5v", i))[0:5]
	}

	switch ll {
	case "debug":
		return colorize("DEBUG", colorYellow)
	case "info":
		return colorize("INFO ", colorGreen)
	case "warn":
		return colorize("WARN ", colorMagenta)
	case "error", "fatal", "panic":
		return colorize(fmt.Sprintf("%-5s", strings.ToUpper(ll)), colorRed)
	default:
		return colorize(fmt.Sprintf("%-5.5s", strings.ToUpper(ll)), colorBold)
	}
}
