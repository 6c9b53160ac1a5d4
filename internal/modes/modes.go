package modes

import "github.com/coreman2200/rkconfig/model"

// Family selects a mode code space. RGB and single-colour boards number
// the same effects differently.
type Family int

const (
	RGB Family = iota
	SingleColor
)

func FamilyOf(rgb bool) Family {
	if rgb {
		return RGB
	}
	return SingleColor
}

func (f Family) String() string {
	if f == RGB {
		return "rgb"
	}
	return "single-color"
}

// RGB family mode codes.
const (
	RGBCustom                 uint8 = 0
	RGBNeonStream             uint8 = 1
	RGBRipplesShining         uint8 = 2
	RGBRotatingWindmill       uint8 = 3
	RGBSineWave               uint8 = 4
	RGBRainbowRoulette        uint8 = 5
	RGBStarsTwinkle           uint8 = 6
	RGBLayerUponLayer         uint8 = 7
	RGBRichAndHonored         uint8 = 8
	RGBMarqueeEffect          uint8 = 9
	RGBRotatingStorm          uint8 = 10
	RGBSerpentineHorseRace    uint8 = 11
	RGBRetroSnake             uint8 = 12
	RGBDiagonalTransformation uint8 = 13
	RGBAmbilight              uint8 = 14
	RGBStreamer               uint8 = 15
	RGBSteady                 uint8 = 16
	RGBBreathing              uint8 = 17
	RGBNeon                   uint8 = 18
	RGBShadowDisappear        uint8 = 19
	RGBFlashAway              uint8 = 20
)

// Single-colour family mode codes.
const (
	SingleSteady                 uint8 = 1
	SingleCustom                 uint8 = 2
	SingleBreathing              uint8 = 3
	SinglePressAndDestroy        uint8 = 4
	SingleNeonStream             uint8 = 5
	SingleStreamer               uint8 = 6
	SingleAmbilight              uint8 = 7
	SingleDripplingRipples       uint8 = 8
	SingleBrilliantPoint         uint8 = 9
	SingleFlashAway              uint8 = 10
	SingleShadowDisappear        uint8 = 11
	SingleRipplesShining         uint8 = 12
	SingleRichAndHonored         uint8 = 13
	SingleMarqueeEffect          uint8 = 14
	SingleRotatingStorm          uint8 = 15
	SingleSerpentineHorseRace    uint8 = 16
	SingleStarsTwinkle           uint8 = 17
	SingleRetroSnake             uint8 = 18
	SingleDiagonalTransformation uint8 = 19
	SingleSineWave               uint8 = 20
)

// List returns the selectable modes for a family in display order.
// Custom leads the RGB list, the rest of it is alphabetical; the
// single-colour list follows code order.
func List(f Family) []model.Mode {
	if f == RGB {
		return []model.Mode{
			{Name: "Custom", ModeBit: RGBCustom},
			{Name: "Ambilight", ModeBit: RGBAmbilight},
			{Name: "Breathing", ModeBit: RGBBreathing},
			{Name: "Diagonal Transformation", ModeBit: RGBDiagonalTransformation},
			{Name: "Flash Away", ModeBit: RGBFlashAway},
			{Name: "Layer Upon Layer", ModeBit: RGBLayerUponLayer},
			{Name: "Marquee Effect", ModeBit: RGBMarqueeEffect},
			{Name: "Neon", ModeBit: RGBNeon},
			{Name: "Neon Stream", ModeBit: RGBNeonStream},
			{Name: "Rainbow Roulette", ModeBit: RGBRainbowRoulette},
			{Name: "Retro Snake", ModeBit: RGBRetroSnake},
			{Name: "Rich And Honored", ModeBit: RGBRichAndHonored},
			{Name: "Ripples Shining", ModeBit: RGBRipplesShining},
			{Name: "Rotating Storm", ModeBit: RGBRotatingStorm},
			{Name: "Rotating Windmill", ModeBit: RGBRotatingWindmill},
			{Name: "Serpentine Horse Race", ModeBit: RGBSerpentineHorseRace},
			{Name: "Shadow Disappear", ModeBit: RGBShadowDisappear},
			{Name: "Sine Wave", ModeBit: RGBSineWave},
			{Name: "Stars Twinkle", ModeBit: RGBStarsTwinkle},
			{Name: "Steady", ModeBit: RGBSteady},
			{Name: "Streamer", ModeBit: RGBStreamer},
		}
	}
	return []model.Mode{
		{Name: "Steady", ModeBit: SingleSteady},
		{Name: "Custom", ModeBit: SingleCustom},
		{Name: "Breathing", ModeBit: SingleBreathing},
		{Name: "Press And Destroy", ModeBit: SinglePressAndDestroy},
		{Name: "Neon Stream", ModeBit: SingleNeonStream},
		{Name: "Streamer", ModeBit: SingleStreamer},
		{Name: "Ambilight", ModeBit: SingleAmbilight},
		{Name: "Drippling Ripples", ModeBit: SingleDripplingRipples},
		{Name: "Brilliant Point", ModeBit: SingleBrilliantPoint},
		{Name: "Flash Away", ModeBit: SingleFlashAway},
		{Name: "Shadow Disappear", ModeBit: SingleShadowDisappear},
		{Name: "Ripples Shining", ModeBit: SingleRipplesShining},
		{Name: "Rich And Honored", ModeBit: SingleRichAndHonored},
		{Name: "Marquee Effect", ModeBit: SingleMarqueeEffect},
		{Name: "Rotating Storm", ModeBit: SingleRotatingStorm},
		{Name: "Serpentine Horse Race", ModeBit: SingleSerpentineHorseRace},
		{Name: "Stars Twinkle", ModeBit: SingleStarsTwinkle},
		{Name: "Retro Snake", ModeBit: SingleRetroSnake},
		{Name: "Diagonal Transformation", ModeBit: SingleDiagonalTransformation},
		{Name: "Sine Wave", ModeBit: SingleSineWave},
	}
}

// IsCustom reports whether modeBit is the family's per-key colour mode.
func IsCustom(modeBit uint8, f Family) bool {
	if f == RGB {
		return modeBit == RGBCustom
	}
	return modeBit == SingleCustom
}

// Lookup finds the catalog entry for modeBit within a family.
func Lookup(modeBit uint8, f Family) (model.Mode, bool) {
	for _, m := range List(f) {
		if m.ModeBit == modeBit {
			return m, true
		}
	}
	return model.Mode{}, false
}
