package server

import (
	"bytes"
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/janelia-flyem/labelpaint/labelpaint"
	"github.com/janelia-flyem/labelpaint/transport"
)

const (
	// DefaultWebAddress is the default address of the labelpaint web server.
	DefaultWebAddress = "localhost:8500"

	// DefaultSize is the label volume size used when none is configured.
	DefaultSize = 256

	// DefaultChunkSize is the chunk edge length used when none is configured.
	DefaultChunkSize = 64
)

// DefaultHost is the most understandable alias for this server.
var DefaultHost = "localhost"

func init() {
	cmd := exec.Command("/bin/hostname", "-f")
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil || out.Len() < 2 {
		return
	}
	DefaultHost = out.String()
	DefaultHost = DefaultHost[:len(DefaultHost)-1] // removes EOL
}

// Config is the TOML server configuration.
type Config struct {
	Server  serverConfig
	Auth    authConfig
	Logging labelpaint.LogConfig
	Volume  volumeConfig
	Viewer  viewerConfig
	Brush   brushConfig
	Fill    fillConfig
	Solver  transport.Config
	Editlog editlogConfig
}

type serverConfig struct {
	HTTPAddress    string
	Host           string
	Note           string
	AllowedOrigins []string
	ShutdownDelay  labelpaint.Duration
}

// boxConfig fills a box of the initial volume with one label.
type boxConfig struct {
	Min   [3]int32
	Max   [3]int32
	Label uint64
}

type volumeConfig struct {
	Size      [3]int32
	ChunkSize [3]int32
	Transform []float64 // 12 row-major values placing voxels in global space

	// ClassifyFragments classifies against a copy of the initial volume rather
	// than the painted one.  Unset means true.
	ClassifyFragments *bool
	Boxes             []boxConfig
}

func (c volumeConfig) classifyFragments() bool {
	return c.ClassifyFragments == nil || *c.ClassifyFragments
}

type viewerConfig struct {
	Transform []float64 // 12 row-major values, global to display
}

type brushConfig struct {
	Radius   *int
	Bindings map[string]string // trigger -> action
}

type fillConfig struct {
	MaxVoxels uint64
	Timeout   labelpaint.Duration
}

type editlogConfig struct {
	Path string
}

// DefaultConfig returns the configuration used when no file is given: a
// headless cubic volume with identity transforms that discards solver traffic.
func DefaultConfig() *Config {
	c := new(Config)
	c.Server.HTTPAddress = DefaultWebAddress
	c.Server.Host = DefaultHost
	c.Solver.Transport = "discard"
	c.setDefaults()
	return c
}

func (c *Config) setDefaults() {
	if c.Server.HTTPAddress == "" {
		c.Server.HTTPAddress = DefaultWebAddress
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	for dim := 0; dim < 3; dim++ {
		if c.Volume.Size[dim] == 0 {
			c.Volume.Size[dim] = DefaultSize
		}
		if c.Volume.ChunkSize[dim] == 0 {
			c.Volume.ChunkSize[dim] = DefaultChunkSize
		}
	}
}

// Some settings in the TOML can be given as relative paths.
// This function converts them in-place to absolute paths,
// assuming the given paths were relative to the TOML file's own directory.
func (c *Config) convertPathsToAbsolute(configPath string) error {
	var err error

	configDir := filepath.Dir(configPath)

	// [logging].logfile
	if c.Logging.Logfile != "" {
		c.Logging.Logfile, err = labelpaint.ConvertToAbsolute(c.Logging.Logfile, configDir)
		if err != nil {
			return fmt.Errorf("error converting logfile setting to absolute path")
		}
	}

	// [auth].auth_file
	if c.Auth.AuthFile != "" {
		c.Auth.AuthFile, err = labelpaint.ConvertToAbsolute(c.Auth.AuthFile, configDir)
		if err != nil {
			return fmt.Errorf("error converting auth_file setting to absolute path")
		}
	}

	// [solver].record
	if c.Solver.Record != "" {
		c.Solver.Record, err = labelpaint.ConvertToAbsolute(c.Solver.Record, configDir)
		if err != nil {
			return fmt.Errorf("error converting solver record setting to absolute path")
		}
	}

	// [editlog].path
	if c.Editlog.Path != "" {
		c.Editlog.Path, err = labelpaint.ConvertToAbsolute(c.Editlog.Path, configDir)
		if err != nil {
			return fmt.Errorf("error converting editlog path to absolute path")
		}
	}
	return nil
}

// LoadConfig loads the server configuration from a TOML file.
func LoadConfig(filename string) (*Config, error) {
	if filename == "" {
		return nil, fmt.Errorf("no server TOML configuration file provided")
	}
	c := new(Config)
	md, err := toml.DecodeFile(filename, c)
	if err != nil {
		return nil, fmt.Errorf("could not decode TOML config: %v", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		labelpaint.Warningf("Ignoring unknown settings in %s: %v\n", filename, undecoded)
	}
	c.setDefaults()
	if err := c.convertPathsToAbsolute(filename); err != nil {
		return nil, fmt.Errorf("could not convert relative paths to absolute paths in TOML config: %v", err)
	}
	labelpaint.Infof("Loaded configuration from %s\n", filename)
	return c, nil
}
