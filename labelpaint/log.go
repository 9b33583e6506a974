package labelpaint

import "time"

// ModeFlag is the lowest severity that gets logged.
type ModeFlag uint

const (
	DebugMode ModeFlag = iota
	InfoMode
	WarningMode
	ErrorMode
	CriticalMode
)

var mode = InfoMode

// SetLogMode drops all messages below the given severity.
func SetLogMode(newMode ModeFlag) {
	mode = newMode
}

func LogMode() ModeFlag {
	return mode
}

func logf(severity ModeFlag, format string, args ...interface{}) {
	if mode <= severity {
		logger.printf(severity, format, args...)
	}
}

func Debugf(format string, args ...interface{})    { logf(DebugMode, format, args...) }
func Infof(format string, args ...interface{})     { logf(InfoMode, format, args...) }
func Warningf(format string, args ...interface{})  { logf(WarningMode, format, args...) }
func Errorf(format string, args ...interface{})    { logf(ErrorMode, format, args...) }
func Criticalf(format string, args ...interface{}) { logf(CriticalMode, format, args...) }

// TimeLog appends the time since NewTimeLog to each message, e.g. for timing a
// fill or a solver notification.
type TimeLog struct {
	start time.Time
}

func NewTimeLog() TimeLog {
	return TimeLog{time.Now()}
}

func (t TimeLog) logf(severity ModeFlag, format string, args ...interface{}) {
	logf(severity, format+": %s\n", append(args, time.Since(t.start))...)
}

func (t TimeLog) Debugf(format string, args ...interface{}) { t.logf(DebugMode, format, args...) }
func (t TimeLog) Infof(format string, args ...interface{})  { t.logf(InfoMode, format, args...) }
func (t TimeLog) Errorf(format string, args ...interface{}) { t.logf(ErrorMode, format, args...) }
