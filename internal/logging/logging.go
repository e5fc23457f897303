// Package logging provides structured logging for the simulation core.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the global logger instance.
var Logger zerolog.Logger

func init() {
	Init(true, "info")
}

// Init initializes the global logger. If pretty is true, logs are
// formatted for human readability; otherwise they are emitted as JSON.
func Init(pretty bool, level string) {
	var output io.Writer = os.Stdout

	if pretty {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(lvl)
	Logger = zerolog.New(output).With().Timestamp().Logger()
}

// Info logs an info-level message.
func Info() *zerolog.Event { return Logger.Info() }

// Debug logs a debug-level message.
func Debug() *zerolog.Event { return Logger.Debug() }

// Warn logs a warning-level message.
func Warn() *zerolog.Event { return Logger.Warn() }

// Error logs an error-level message.
func Error() *zerolog.Event { return Logger.Error() }

// WithEntity returns a logger with instance-id context.
func WithEntity(instanceID string) zerolog.Logger {
	return Logger.With().Str("entity", instanceID).Logger()
}

// WithRoom returns a logger with room context.
func WithRoom(regionID, roomID string) zerolog.Logger {
	return Logger.With().Str("region", regionID).Str("room", roomID).Logger()
}

// WithQuest returns a logger with quest-instance context.
func WithQuest(questInstanceID string) zerolog.Logger {
	return Logger.With().Str("quest", questInstanceID).Logger()
}

// WithInstance returns a logger with procedural-instance-region context.
func WithInstance(instanceRegionID string) zerolog.Logger {
	return Logger.With().Str("instance_region", instanceRegionID).Logger()
}

// WithTick returns a logger tagged with the current tick number.
func WithTick(tick uint64) zerolog.Logger {
	return Logger.With().Uint64("tick", tick).Logger()
}
