package labelpaint

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/blang/semver"
)

const (
	Kilo = 1 << 10
	Mega = 1 << 20
	Giga = 1 << 30
)

// Version is the semantic version of this labelpaint build.
var Version = semver.MustParse("0.3.0")

// ProtocolVersion is the version of the solver message protocol produced.
var ProtocolVersion = semver.MustParse("1.0.0")

// ConvertToAbsolute returns an absolute path given a path relative to the base directory.
func ConvertToAbsolute(path, baseDir string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("can't convert empty path to absolute path")
	}
	if filepath.IsAbs(path) {
		return path, nil
	}
	return filepath.Abs(filepath.Join(baseDir, path))
}

// Duration is a time.Duration that decodes from TOML strings like "30s".
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	dur, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("bad duration %q: %v", string(text), err)
	}
	*d = Duration(dur)
	return nil
}

func (d Duration) String() string {
	return time.Duration(d).String()
}
