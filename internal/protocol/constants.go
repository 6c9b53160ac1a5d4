package protocol

import "github.com/coreman2200/rkconfig/model"

// Frame layout constants. Every report starts with ReportID followed by the
// command byte; multi-frame commands use the frame count as their command.
const (
	FrameSize = model.FrameSize

	ReportID = 0x0a

	// Standard light frame: 0a 01 01 02 29 | mode | 00 | anim | bright | r g b | random | sleep
	StandardLightCommand = 0x01
	offMode              = 5
	offAnimation         = 7
	offBrightness        = 8
	offColor             = 9
	offRandomColors      = 12
	offSleep             = 13

	// Custom light frames: 7 frames over a 455-byte table of RGB triplets.
	CustomLightFrames    = 7
	CustomLightTableSize = CustomLightFrames * FrameSize
	CustomLightSlotSize  = 3

	// Key mapping frames: 9 frames over a 585-byte table of 4-byte key codes.
	KeyMapFrames    = 9
	KeyMapTableSize = KeyMapFrames * FrameSize
	KeyMapSlotSize  = 4

	// Bytes ahead of the payload in frames after the first: report id, count, index.
	ContinuationHeaderSize = 3
)

var standardLightHeader = []byte{ReportID, StandardLightCommand, 0x01, 0x02, 0x29}

// First-frame-only bytes following report id, count and index.
var (
	customLightFirstExtra = []byte{0x03, 0x7e, 0x01}
	keyMapFirstExtra      = []byte{0x01, 0xf8}
)

// Table bytes that actually reach the device. The tables are consumed
// sequentially and the tail beyond these sizes is never transmitted.
const (
	CustomLightPayloadSize = CustomLightFrames*(FrameSize-ContinuationHeaderSize) - 3
	KeyMapPayloadSize      = KeyMapFrames*(FrameSize-ContinuationHeaderSize) - 2
)
