package protocol

import (
	"encoding/binary"

	"github.com/coreman2200/rkconfig/model"
)

var keyMapLayout = chunkLayout{frames: KeyMapFrames, firstExtra: keyMapFirstExtra}

// KeyMapSlotFits reports whether a key code at idx lands inside the table.
func KeyMapSlotFits(idx uint8) bool {
	return int(idx)*KeyMapSlotSize+KeyMapSlotSize-1 < KeyMapTableSize
}

// KeyMapSlotTransmitted reports whether a key code at idx reaches the device.
func KeyMapSlotTransmitted(idx uint8) bool {
	return int(idx)*KeyMapSlotSize+KeyMapSlotSize-1 < KeyMapPayloadSize
}

// putKeyCode writes the code right-justified, most significant byte first.
func putKeyCode(dst []byte, k model.KeyCode) {
	binary.BigEndian.PutUint32(dst, k.Uint32())
}

// keyMapTable lays out factory defaults first and overrides second, so an
// override at the same index always wins.
func keyMapTable(keys []model.KeyDescriptor, mappings []model.KeyMapping) []byte {
	table := make([]byte, KeyMapTableSize)
	for _, k := range keys {
		if KeyMapSlotFits(k.BufferIndex) {
			putKeyCode(table[int(k.BufferIndex)*KeyMapSlotSize:], k.KeyCode)
		}
	}
	for _, m := range mappings {
		if KeyMapSlotFits(m.BufferIndex) {
			putKeyCode(table[int(m.BufferIndex)*KeyMapSlotSize:], m.KeyCode)
		}
	}
	return table
}

func encodeKeyMap(keys []model.KeyDescriptor, mappings []model.KeyMapping) []model.Frame {
	return pack(keyMapTable(keys, mappings), keyMapLayout)
}
