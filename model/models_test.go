package model_test

import (
	"encoding/json"
	"strconv"
	"testing"

	. "github.com/coreman2200/rkconfig/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var TestRGBIsExpectedColor = []struct {
	R      uint8
	G      uint8
	B      uint8
	Expect uint32
}{
	{0x11, 0x22, 0x33, 0x112233},
	{0x2A, 0x44, 0x34, 0x2A4434},
	{0xAB, 0x3B, 0x88, 0xAB3B88},
	{0x00, 0x00, 0x00, 0x000000},
	{0xFF, 0xFF, 0xFF, 0xFFFFFF},
}

func TestColorsPacked(t *testing.T) {
	for k, v := range TestRGBIsExpectedColor {
		t.Run("Given RGB"+strconv.FormatUint(uint64(k), 10), func(t *testing.T) {
			col := RGB{R: v.R, G: v.G, B: v.B}
			assert.Equal(t, v.Expect, col.Packed(), "should be same val")
			assert.Equal(t, col, NewRGB(v.Expect))
			assert.Equal(t, []byte{v.R, v.G, v.B}, col.Serialize())
		})
	}
}

func TestColorToNRGBAIsOpaque(t *testing.T) {
	c := NewRGB(0x102030).ToNRGBA()
	assert.Equal(t, uint8(0x10), c.R)
	assert.Equal(t, uint8(0x20), c.G)
	assert.Equal(t, uint8(0x30), c.B)
	assert.Equal(t, uint8(0xFF), c.A)
}

func TestParseRGB(t *testing.T) {
	for _, s := range []string{"#ff8000", "ff8000", "0xFF8000", " #FF8000 "} {
		c, err := ParseRGB(s)
		require.NoError(t, err, s)
		assert.Equal(t, RGB{R: 0xFF, G: 0x80, B: 0x00}, c, s)
	}
	for _, s := range []string{"", "#fff", "#gg0000", "#12345678"} {
		_, err := ParseRGB(s)
		assert.Error(t, err, s)
	}
}

func TestRGBStringRoundsThroughParse(t *testing.T) {
	c := RGB{R: 1, G: 2, B: 3}
	assert.Equal(t, "#010203", c.String())
	back, err := ParseRGB(c.String())
	require.NoError(t, err)
	assert.Equal(t, c, back)
}

func TestLightModeYAMLColorForms(t *testing.T) {
	src := `
mode_bit: 0
brightness: 4
color: "#0a0b0c"
custom_colors:
  - buffer_index: 3
    color: {r: 1, g: 2, b: 3}
  - buffer_index: 4
    color: "#ffffff"
`
	var lm LightModeConfig
	require.NoError(t, yaml.Unmarshal([]byte(src), &lm))
	require.NotNil(t, lm.Color)
	assert.Equal(t, RGB{R: 0x0a, G: 0x0b, B: 0x0c}, *lm.Color)
	require.Len(t, lm.CustomColors, 2)
	assert.Equal(t, RGB{R: 1, G: 2, B: 3}, lm.CustomColors[0].Color)
	assert.Equal(t, RGB{R: 0xff, G: 0xff, B: 0xff}, lm.CustomColors[1].Color)
}

func TestLightModeYAMLRejectsBadColor(t *testing.T) {
	var lm LightModeConfig
	assert.Error(t, yaml.Unmarshal([]byte(`color: "#xyz"`), &lm))
}

func TestFrameBytesAliasesArray(t *testing.T) {
	var f Frame
	b := f.Bytes()
	require.Len(t, b, FrameSize)
	b[0] = 0x0a
	assert.Equal(t, byte(0x0a), f[0])
	assert.Equal(t, "0a", f.String()[:2])
}

func TestKeyCodeUint32(t *testing.T) {
	assert.Equal(t, uint32(0x0001F600), KeyCode(0x0001F600).Uint32())
}

func TestCustomColorsEmptyVersusAbsentSurvivesMarshal(t *testing.T) {
	empty := LightModeConfig{ModeBit: 0, CustomColors: []PerKeyColor{}}
	absent := LightModeConfig{ModeBit: 0}

	b, err := yaml.Marshal(empty)
	require.NoError(t, err)
	assert.Contains(t, string(b), "custom_colors: []")
	var back LightModeConfig
	require.NoError(t, yaml.Unmarshal(b, &back))
	require.NotNil(t, back.CustomColors)
	assert.Empty(t, back.CustomColors)

	b, err = yaml.Marshal(absent)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "custom_colors")
	back = LightModeConfig{}
	require.NoError(t, yaml.Unmarshal(b, &back))
	assert.Nil(t, back.CustomColors)

	js, err := json.Marshal(empty)
	require.NoError(t, err)
	assert.Contains(t, string(js), `"custom_colors":[]`)
	js, err = json.Marshal(&absent)
	require.NoError(t, err)
	assert.NotContains(t, string(js), "custom_colors")
}
