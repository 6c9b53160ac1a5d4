package model

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	RED_OFFSET   uint8 = 0x10
	GREEN_OFFSET uint8 = 0x08
	BLUE_OFFSET  uint8 = 0x0
)

// RGB is a single 8-bit-per-channel colour as the firmware consumes it.
type RGB struct {
	R uint8 `json:"r" yaml:"r"`
	G uint8 `json:"g" yaml:"g"`
	B uint8 `json:"b" yaml:"b"`
}

// NewRGB unpacks a 0xRRGGBB value.
func NewRGB(c uint32) RGB {
	return RGB{
		R: getcolor(c, RED_OFFSET),
		G: getcolor(c, GREEN_OFFSET),
		B: getcolor(c, BLUE_OFFSET),
	}
}

func getcolor(c uint32, off uint8) uint8 {
	var mask uint32 = 0xFF << off
	return uint8((c & mask) >> off)
}

// Packed returns the colour as 0xRRGGBB.
func (c RGB) Packed() uint32 {
	return uint32(c.R)<<RED_OFFSET | uint32(c.G)<<GREEN_OFFSET | uint32(c.B)<<BLUE_OFFSET
}

func (c RGB) ToNRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// Serialize returns the wire triplet r, g, b.
func (c RGB) Serialize() []byte {
	return []byte{c.R, c.G, c.B}
}

func (c RGB) String() string {
	return fmt.Sprintf("#%06x", c.Packed())
}

// ParseRGB accepts "#rrggbb", "rrggbb" or "0xrrggbb".
func ParseRGB(s string) (RGB, error) {
	v := strings.TrimSpace(s)
	v = strings.TrimPrefix(v, "#")
	v = strings.TrimPrefix(strings.TrimPrefix(v, "0x"), "0X")
	if len(v) != 6 {
		return RGB{}, fmt.Errorf("invalid colour %q: want 6 hex digits", s)
	}
	n, err := strconv.ParseUint(v, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return NewRGB(uint32(n)), nil
}

// UnmarshalYAML decodes either a hex string or an {r, g, b} mapping.
func (c *RGB) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		rgb, err := ParseRGB(value.Value)
		if err != nil {
			return err
		}
		*c = rgb
		return nil
	}
	type plain RGB
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*c = RGB(p)
	return nil
}
