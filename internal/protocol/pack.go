package protocol

import "github.com/coreman2200/rkconfig/model"

// chunkLayout describes how a flat table is split across a run of frames.
// Every frame opens with report id, frame count and 1-based frame index;
// the first frame carries firstExtra right after that.
type chunkLayout struct {
	frames     int
	firstExtra []byte
}

func (l chunkLayout) headerSize(i int) int {
	if i == 0 {
		return ContinuationHeaderSize + len(l.firstExtra)
	}
	return ContinuationHeaderSize
}

// payloadSize is the number of table bytes the run can carry.
func (l chunkLayout) payloadSize() int {
	n := 0
	for i := 0; i < l.frames; i++ {
		n += FrameSize - l.headerSize(i)
	}
	return n
}

// pack copies table into the frames strictly in order, without gaps.
// Frames left without table data stay zero past their header.
func pack(table []byte, l chunkLayout) []model.Frame {
	frames := make([]model.Frame, l.frames)
	off := 0
	for i := range frames {
		f := &frames[i]
		f[0] = ReportID
		f[1] = byte(l.frames)
		f[2] = byte(i + 1)
		if i == 0 {
			copy(f[ContinuationHeaderSize:], l.firstExtra)
		}
		if off < len(table) {
			off += copy(f[l.headerSize(i):], table[off:])
		}
	}
	return frames
}
