package model

import (
	"encoding/hex"
	"encoding/json"
)

// FrameSize is the length of every report sent to the keyboard.
const FrameSize = 65

// Frame is one outbound report. Its position in a frame list is significant.
type Frame [FrameSize]byte

func (f *Frame) Bytes() []byte {
	return f[:]
}

func (f Frame) String() string {
	return hex.EncodeToString(f[:])
}

// KeyCode identifies a key function. Its integer value is what goes on the wire.
type KeyCode uint32

func (k KeyCode) Uint32() uint32 {
	return uint32(k)
}

// Mode pairs a display label with the lighting mode code sent to the device.
type Mode struct {
	Name    string `json:"name" yaml:"name"`
	ModeBit uint8  `json:"mode_bit" yaml:"mode_bit"`
}

type DeviceID struct {
	VID uint16 `json:"vid" yaml:"vid"`
	PID uint16 `json:"pid" yaml:"pid"`
}

// KeyDescriptor is the factory assignment of a physical key position.
type KeyDescriptor struct {
	BufferIndex uint8   `json:"buffer_index" yaml:"buffer_index"`
	KeyCode     KeyCode `json:"key_code" yaml:"key_code"`
}

// Keyboard is the static description of one physical unit.
// ID, Name, Path and LightEnabled are descriptive only and never change encoding.
type Keyboard struct {
	ID            DeviceID        `json:"id" yaml:"id"`
	Name          string          `json:"name" yaml:"name"`
	Path          string          `json:"path,omitempty" yaml:"path,omitempty"`
	RGB           bool            `json:"rgb" yaml:"rgb"`
	LightEnabled  bool            `json:"light_enabled" yaml:"light_enabled"`
	KeyMapEnabled bool            `json:"key_map_enabled" yaml:"key_map_enabled"`
	Keys          []KeyDescriptor `json:"keys" yaml:"keys"`
}

type PerKeyColor struct {
	BufferIndex uint8 `json:"buffer_index" yaml:"buffer_index"`
	Color       RGB   `json:"color" yaml:"color"`
}

// LightModeConfig is the lighting selection. A nil CustomColors means no per-key
// data was supplied; an empty non-nil slice is an all-off table.
type LightModeConfig struct {
	ModeBit      uint8         `json:"mode_bit" yaml:"mode_bit"`
	Animation    uint8         `json:"animation" yaml:"animation"`
	Brightness   uint8         `json:"brightness" yaml:"brightness"`
	Color        *RGB          `json:"color,omitempty" yaml:"color,omitempty"`
	RandomColors bool          `json:"random_colors" yaml:"random_colors"`
	Sleep        uint8         `json:"sleep" yaml:"sleep"`
	CustomColors []PerKeyColor `json:"custom_colors,omitempty" yaml:"custom_colors,omitempty"`
}

// lightModeWire keeps CustomColors nil-versus-empty through marshalling:
// omitempty drops a nil pointer but writes an empty list as [].
type lightModeWire struct {
	ModeBit      uint8          `json:"mode_bit" yaml:"mode_bit"`
	Animation    uint8          `json:"animation" yaml:"animation"`
	Brightness   uint8          `json:"brightness" yaml:"brightness"`
	Color        *RGB           `json:"color,omitempty" yaml:"color,omitempty"`
	RandomColors bool           `json:"random_colors" yaml:"random_colors"`
	Sleep        uint8          `json:"sleep" yaml:"sleep"`
	CustomColors *[]PerKeyColor `json:"custom_colors,omitempty" yaml:"custom_colors,omitempty"`
}

func (lm LightModeConfig) wire() lightModeWire {
	w := lightModeWire{
		ModeBit:      lm.ModeBit,
		Animation:    lm.Animation,
		Brightness:   lm.Brightness,
		Color:        lm.Color,
		RandomColors: lm.RandomColors,
		Sleep:        lm.Sleep,
	}
	if lm.CustomColors != nil {
		cc := lm.CustomColors
		w.CustomColors = &cc
	}
	return w
}

func (lm LightModeConfig) MarshalYAML() (interface{}, error) {
	return lm.wire(), nil
}

func (lm LightModeConfig) MarshalJSON() ([]byte, error) {
	return json.Marshal(lm.wire())
}

type KeyMapping struct {
	BufferIndex uint8   `json:"buffer_index" yaml:"buffer_index"`
	KeyCode     KeyCode `json:"key_code" yaml:"key_code"`
}

// KeyMappingConfig holds sparse overrides keyed by physical position.
type KeyMappingConfig struct {
	Mappings []KeyMapping `json:"mappings" yaml:"mappings"`
}

// KeyboardConfig is what the user selected. A nil section leaves that subsystem untouched.
type KeyboardConfig struct {
	LightMode  *LightModeConfig  `json:"light_mode,omitempty" yaml:"light_mode,omitempty"`
	KeyMapping *KeyMappingConfig `json:"key_mapping,omitempty" yaml:"key_mapping,omitempty"`
}
