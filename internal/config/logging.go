package config

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func parseLevel(level string) (zerolog.Level, error) {
	l, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return zerolog.InfoLevel, fmt.Errorf("%w: logging.level %q", ErrInvalidConfig, level)
	}
	return l, nil
}

// SetupLogging configures the global zerolog logger from c, writing to out.
func SetupLogging(c LoggingConfig, out io.Writer) {
	level, err := parseLevel(c.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if c.Format == "json" {
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    c.Format == "plain",
		TimeFormat: time.RFC3339,
	})
}
