package protocol

import (
	"fmt"

	"github.com/coreman2200/rkconfig/internal/modes"
	"github.com/coreman2200/rkconfig/model"
)

// Kind names a run of frames produced for one subsystem.
type Kind string

const (
	StandardLight Kind = "standard_light"
	CustomLight   Kind = "custom_light"
	KeyMap        Kind = "key_map"
)

// Section is a contiguous run of frames of a single Kind.
type Section struct {
	Kind   Kind
	Frames []model.Frame
}

type Option func(*Builder)

// WithColorRequired makes a light config without a base colour an error.
func WithColorRequired() Option {
	return func(b *Builder) {
		b.requireColor = true
	}
}

// Builder turns a keyboard description and configuration into report frames.
// It holds no mutable state and is safe for concurrent use.
type Builder struct {
	requireColor bool
}

func NewBuilder(opts ...Option) *Builder {
	b := &Builder{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildBuffers encodes cfg for kb with default options.
func BuildBuffers(kb model.Keyboard, cfg model.KeyboardConfig) ([]model.Frame, error) {
	return NewBuilder().Build(kb, cfg)
}

// Build returns the frames in transmission order: the standard light frame,
// then custom light frames, then key mapping frames.
func (b *Builder) Build(kb model.Keyboard, cfg model.KeyboardConfig) ([]model.Frame, error) {
	sections, err := b.BuildSections(kb, cfg)
	if err != nil {
		return nil, err
	}
	n := 0
	for _, s := range sections {
		n += len(s.Frames)
	}
	out := make([]model.Frame, 0, n)
	for _, s := range sections {
		out = append(out, s.Frames...)
	}
	return out, nil
}

// BuildSections is Build with the frames grouped by subsystem.
// Either every section is returned or none is.
func (b *Builder) BuildSections(kb model.Keyboard, cfg model.KeyboardConfig) ([]Section, error) {
	var sections []Section

	if lm := cfg.LightMode; lm != nil {
		custom := modes.IsCustom(lm.ModeBit, modes.FamilyOf(kb.RGB))
		if custom && lm.CustomColors == nil {
			return nil, fmt.Errorf("mode %d (%s): %w", lm.ModeBit, modes.FamilyOf(kb.RGB), ErrMissingCustomColors)
		}

		std, err := encodeStandardLight(lm, b.requireColor)
		if err != nil {
			return nil, err
		}
		sections = append(sections, Section{Kind: StandardLight, Frames: []model.Frame{std}})

		if custom {
			sections = append(sections, Section{Kind: CustomLight, Frames: encodeCustomLight(lm.CustomColors)})
		}
	}

	if kb.KeyMapEnabled && cfg.KeyMapping != nil {
		sections = append(sections, Section{Kind: KeyMap, Frames: encodeKeyMap(kb.Keys, cfg.KeyMapping.Mappings)})
	}

	return sections, nil
}
