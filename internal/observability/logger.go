package observability

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/satlink/internal/logging"
)

// InitLogger applies the runtime logging profile and tags the global logger
// with the application name.
func InitLogger(app string) zerolog.Logger {
	logging.ConfigureRuntime()
	logger := log.With().Str("app", app).Logger()
	log.Logger = logger
	return logger
}
