package labelpaint

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	. "github.com/janelia-flyem/go/gocheck"
)

func (s *DataSuite) TestLogModes(c *C) {
	logfile := filepath.Join(c.MkDir(), "labelpaint.log")
	cfg := LogConfig{Logfile: logfile, MaxSize: 1, MaxAge: 1}
	cfg.SetLogger()
	defer func() {
		Shutdown()
		logger = fileLogger{}
		log.SetOutput(os.Stderr)
		SetLogMode(InfoMode)
	}()

	SetLogMode(WarningMode)
	c.Assert(LogMode(), Equals, WarningMode)
	Debugf("debug line %d\n", 1)
	Infof("info line %d\n", 2)
	Warningf("warning line %d\n", 3)
	Errorf("error line %d\n", 4)
	Criticalf("critical line %d\n", 5)
	tlog := NewTimeLog()
	tlog.Infof("timed info")
	tlog.Errorf("timed error")

	data, err := os.ReadFile(logfile)
	c.Assert(err, IsNil)
	text := string(data)
	c.Assert(strings.Contains(text, "debug line"), Equals, false)
	c.Assert(strings.Contains(text, "info line"), Equals, false)
	c.Assert(strings.Contains(text, " WARNING warning line 3"), Equals, true)
	c.Assert(strings.Contains(text, " ERROR error line 4"), Equals, true)
	c.Assert(strings.Contains(text, " CRITICAL critical line 5"), Equals, true)
	c.Assert(strings.Contains(text, "timed info"), Equals, false)
	c.Assert(strings.Contains(text, " ERROR timed error: "), Equals, true)
}
