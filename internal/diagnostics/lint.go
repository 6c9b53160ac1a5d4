package diagnostics

import (
	"fmt"

	"github.com/coreman2200/rkconfig/internal/modes"
	"github.com/coreman2200/rkconfig/internal/protocol"
	"github.com/coreman2200/rkconfig/model"
)

// Lint surfaces what the frame builder would silently skip or drop for a
// keyboard/config pair. It never changes what gets built.
func Lint(kb model.Keyboard, cfg model.KeyboardConfig) []Diagnostic {
	var out []Diagnostic
	fam := modes.FamilyOf(kb.RGB)

	if lm := cfg.LightMode; lm != nil {
		if !kb.LightEnabled {
			out = append(out, Diagnostic{
				Severity: Info, Code: "LIGHT.DISABLED",
				Summary:  "Lighting configured for a keyboard that does not advertise lighting support",
				Evidence: map[string]any{"keyboard": kb.Name},
			})
		}
		if _, ok := modes.Lookup(lm.ModeBit, fam); !ok {
			out = append(out, Diagnostic{
				Severity: Warn, Code: "LIGHT.UNKNOWN_MODE",
				Summary:        fmt.Sprintf("Mode %d is not in the %s catalog", lm.ModeBit, fam),
				SuggestedFixes: []string{"check that the keyboard's rgb flag matches its family"},
				Evidence:       map[string]any{"mode_bit": lm.ModeBit, "family": fam.String()},
			})
		}
		if modes.IsCustom(lm.ModeBit, fam) {
			if lm.CustomColors == nil {
				out = append(out, Diagnostic{
					Severity: Err, Code: "LIGHT.MISSING_CUSTOM_COLORS",
					Summary:        "Custom mode selected without per-key colours",
					SuggestedFixes: []string{"add custom_colors or pick a built-in mode"},
				})
			}
			for _, pk := range lm.CustomColors {
				if d, ok := slotDiagnostic("CUSTOM_COLOR", pk.BufferIndex,
					protocol.CustomColorFits(pk.BufferIndex), protocol.CustomColorTransmitted(pk.BufferIndex)); ok {
					out = append(out, d)
				}
			}
		}
	}

	seen := map[uint8]bool{}
	for _, k := range kb.Keys {
		if seen[k.BufferIndex] {
			out = append(out, Diagnostic{
				Severity: Warn, Code: "KEYS.DUPLICATE_INDEX",
				Summary:  fmt.Sprintf("keyboard.keys lists buffer_index %d more than once; the last entry wins", k.BufferIndex),
				Evidence: map[string]any{"buffer_index": k.BufferIndex, "key_code": k.KeyCode.Uint32()},
			})
		}
		seen[k.BufferIndex] = true
	}

	if km := cfg.KeyMapping; km != nil {
		if !kb.KeyMapEnabled {
			out = append(out, Diagnostic{
				Severity: Info, Code: "KEYMAP.DISABLED",
				Summary:  "Key mapping configured for a keyboard without key mapping support; it will not be sent",
				Evidence: map[string]any{"keyboard": kb.Name, "mappings": len(km.Mappings)},
			})
		} else {
			for _, m := range km.Mappings {
				if d, ok := slotDiagnostic("KEYMAP", m.BufferIndex,
					protocol.KeyMapSlotFits(m.BufferIndex), protocol.KeyMapSlotTransmitted(m.BufferIndex)); ok {
					out = append(out, d)
				}
			}
		}
	}

	return out
}

func slotDiagnostic(prefix string, idx uint8, fits, transmitted bool) (Diagnostic, bool) {
	switch {
	case !fits:
		return Diagnostic{
			Severity: Warn, Code: prefix + ".DROPPED",
			Summary:  fmt.Sprintf("buffer_index %d is outside the table and is ignored", idx),
			Evidence: map[string]any{"buffer_index": idx},
		}, true
	case !transmitted:
		return Diagnostic{
			Severity: Warn, Code: prefix + ".NOT_SENT",
			Summary:  fmt.Sprintf("buffer_index %d lies past the last byte sent to the device", idx),
			Evidence: map[string]any{"buffer_index": idx},
		}, true
	}
	return Diagnostic{}, false
}
