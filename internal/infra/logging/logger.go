// internal/infra/logging/logger.go
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global zerolog logger. Development uses the console
// writer; production writes JSON lines for Cloud Logging.
func Init(level string, production bool) {
	InitWithWriter(level, production, os.Stderr)
}

func InitWithWriter(level string, production bool, w io.Writer) {
	zerolog.TimeFieldFormat = time.RFC3339

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if production {
		// Cloud Logging は "severity" を見る
		zerolog.LevelFieldName = "severity"
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
		return
	}
	zerolog.LevelFieldName = "level"
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339})
}
