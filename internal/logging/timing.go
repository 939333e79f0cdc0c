package logging

import (
	"time"

	"github.com/rs/zerolog"
)

// Timing logs the start of operation at debug level and returns a func that
// logs its completion with the elapsed time.
//
//	defer logging.Timing(logger, "build register")()
func Timing(logger zerolog.Logger, operation string) func() {
	if logger.GetLevel() > zerolog.DebugLevel {
		return func() {}
	}

	start := time.Now()
	logger.Debug().Str("operation", operation).Msg("starting")

	return func() {
		logger.Debug().
			Str("operation", operation).
			Dur("took", time.Since(start)).
			Msg("completed")
	}
}
