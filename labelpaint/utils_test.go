package labelpaint

import (
	"path/filepath"
	"time"

	. "github.com/janelia-flyem/go/gocheck"
)

func (s *DataSuite) TestConvertToAbsolute(c *C) {
	abs, err := ConvertToAbsolute("logs/paint.log", "/etc/labelpaint")
	c.Assert(err, IsNil)
	c.Assert(abs, Equals, filepath.Join("/etc/labelpaint", "logs/paint.log"))

	abs, err = ConvertToAbsolute("/var/log/paint.log", "/etc/labelpaint")
	c.Assert(err, IsNil)
	c.Assert(abs, Equals, "/var/log/paint.log")

	_, err = ConvertToAbsolute("", "/etc")
	c.Assert(err, NotNil)
}

func (s *DataSuite) TestDuration(c *C) {
	var d Duration
	c.Assert(d.UnmarshalText([]byte("1m30s")), IsNil)
	c.Assert(time.Duration(d), Equals, 90*time.Second)
	c.Assert(d.String(), Equals, "1m30s")
	c.Assert(d.UnmarshalText([]byte("soon")), NotNil)
}

func (s *DataSuite) TestVersions(c *C) {
	c.Assert(Version.Major, Equals, uint64(0))
	c.Assert(ProtocolVersion.GTE(Version), Equals, true)
}
