package protocol

import (
	"fmt"

	"github.com/coreman2200/rkconfig/model"
)

var customLightLayout = chunkLayout{frames: CustomLightFrames, firstExtra: customLightFirstExtra}

func encodeStandardLight(lm *model.LightModeConfig, requireColor bool) (model.Frame, error) {
	var f model.Frame
	if requireColor && lm.Color == nil {
		return f, fmt.Errorf("mode %d: %w", lm.ModeBit, ErrMissingColor)
	}

	copy(f[:], standardLightHeader)
	f[offMode] = lm.ModeBit
	f[offAnimation] = lm.Animation
	f[offBrightness] = lm.Brightness
	if lm.Color != nil {
		copy(f[offColor:], lm.Color.Serialize())
	}
	if lm.RandomColors {
		f[offRandomColors] = 0x01
	}
	f[offSleep] = lm.Sleep
	return f, nil
}

// CustomColorFits reports whether a per-key colour at idx lands inside the table.
func CustomColorFits(idx uint8) bool {
	return int(idx)*CustomLightSlotSize+CustomLightSlotSize-1 < CustomLightTableSize
}

// CustomColorTransmitted reports whether a per-key colour at idx reaches the device.
func CustomColorTransmitted(idx uint8) bool {
	return int(idx)*CustomLightSlotSize+CustomLightSlotSize-1 < CustomLightPayloadSize
}

func customLightTable(colors []model.PerKeyColor) []byte {
	table := make([]byte, CustomLightTableSize)
	for _, pk := range colors {
		if !CustomColorFits(pk.BufferIndex) {
			continue
		}
		copy(table[int(pk.BufferIndex)*CustomLightSlotSize:], pk.Color.Serialize())
	}
	return table
}

func encodeCustomLight(colors []model.PerKeyColor) []model.Frame {
	return pack(customLightTable(colors), customLightLayout)
}
