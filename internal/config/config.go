package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/rkconfig/internal/report"
	"github.com/coreman2200/rkconfig/model"
)

const (
	PreviewScreen = "screen"
	PreviewSPI    = "spi"
)

var ErrInvalid = errors.New("invalid config")

type Transport struct {
	Driver       string `yaml:"driver"` // "hid" | "sim"
	Path         string `yaml:"path,omitempty"`
	FrameDelayMs int    `yaml:"frame_delay_ms"`
}

func (t Transport) FrameDelay() time.Duration {
	return time.Duration(t.FrameDelayMs) * time.Millisecond
}

// SPI names the port of an nrzled strip. The strip is always clocked at
// the fixed rate nrzled requires.
type SPI struct {
	Dev string `yaml:"dev"` // e.g. /dev/spidev0.0
}

type Preview struct {
	Driver string `yaml:"driver"` // "screen" | "spi"
	Width  int    `yaml:"width"`
	SPI    SPI    `yaml:"spi,omitempty"`
}

type Server struct {
	Addr string `yaml:"addr"`
}

// Config is the tool configuration: which keyboard, what to send to it and
// how to reach it.
type Config struct {
	Keyboard  model.Keyboard       `yaml:"keyboard"`
	Config    model.KeyboardConfig `yaml:"config"`
	Transport Transport            `yaml:"transport"`
	Preview   Preview              `yaml:"preview"`
	Server    Server               `yaml:"server"`
}

func Default() *Config {
	return &Config{
		Transport: Transport{
			Driver:       report.DriverSim,
			FrameDelayMs: int(report.DefaultFrameDelay / time.Millisecond),
		},
		Preview: Preview{
			Driver: PreviewScreen,
			Width:  80,
		},
		Server: Server{Addr: ":8080"},
	}
}

// Load reads path over Default, so omitted sections keep their defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

func (c *Config) Validate() error {
	switch c.Transport.Driver {
	case report.DriverSim, "":
	case report.DriverHID:
		if c.Transport.Path == "" {
			return fmt.Errorf("%w: transport.path is required for the hid driver", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown transport.driver %q", ErrInvalid, c.Transport.Driver)
	}
	if c.Transport.FrameDelayMs < 0 {
		return fmt.Errorf("%w: transport.frame_delay_ms must not be negative", ErrInvalid)
	}
	switch c.Preview.Driver {
	case PreviewScreen, PreviewSPI, "":
	default:
		return fmt.Errorf("%w: unknown preview.driver %q", ErrInvalid, c.Preview.Driver)
	}
	if c.Preview.Width < 0 {
		return fmt.Errorf("%w: preview.width must not be negative", ErrInvalid)
	}
	return nil
}
