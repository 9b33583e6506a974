package labelpaint

import (
	"fmt"
	"log"

	"github.com/natefinch/lumberjack"
)

var severityTags = map[ModeFlag]string{
	DebugMode:    " DEBUG ",
	InfoMode:     " INFO ",
	WarningMode:  " WARNING ",
	ErrorMode:    " ERROR ",
	CriticalMode: " CRITICAL ",
}

// fileLogger writes through the standard logger, which SetLogger may point at a
// rotating file.
type fileLogger struct {
	rotating *lumberjack.Logger
}

var logger fileLogger

func (l fileLogger) printf(severity ModeFlag, format string, args ...interface{}) {
	log.Printf(severityTags[severity]+format, args...)
}

// LogConfig is the [logging] section of the TOML configuration.
type LogConfig struct {
	Logfile string
	MaxSize int `toml:"max_log_size"` // megabytes
	MaxAge  int `toml:"max_log_age"`  // days
}

// SetLogger sends log output to a rotating file if one is configured.
func (c *LogConfig) SetLogger() {
	if c == nil || c.Logfile == "" {
		Infof("No log file configured, logging to stderr.\n")
		return
	}
	fmt.Printf("Logging to %s\n", c.Logfile)
	l := &lumberjack.Logger{
		Filename: c.Logfile,
		MaxSize:  c.MaxSize,
		MaxAge:   c.MaxAge,
	}
	log.SetOutput(l)
	logger = fileLogger{l}
}

// Shutdown closes the rotating log file, if any.
func Shutdown() {
	if logger.rotating != nil {
		log.Printf("Closing log file %s\n", logger.rotating.Filename)
		logger.rotating.Close()
	}
}
