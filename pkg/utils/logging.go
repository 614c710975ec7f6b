package utils

import (
	"github.com/charmbracelet/log"
)

// SetLogLevel applies a LOG_LEVEL value, falling back to info for unknown names.
func SetLogLevel(level string) log.Level {
	l, err := log.ParseLevel(level)
	if err != nil {
		log.Warn("unknown log level, using info", "level", level)
		l = log.InfoLevel
	}
	log.SetLevel(l)
	return l
}
