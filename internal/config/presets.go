package config

// WidthPreset represents a named playback width.
type WidthPreset string

const (
	WidthAuto   WidthPreset = "auto"
	WidthSmall  WidthPreset = "small"
	WidthMedium WidthPreset = "medium"
	WidthLarge  WidthPreset = "large"
)

// Auto-fit parameters: 85% of the terminal, never narrower than 60.
const (
	AutoWidthRatio    = 0.85
	AutoWidthMin      = 60
	AutoWidthFallback = 100
)

// WidthPresets lists the presets in menu order.
var WidthPresets = []WidthPreset{WidthAuto, WidthSmall, WidthMedium, WidthLarge}

// Valid reports whether p is a known preset.
func (p WidthPreset) Valid() bool {
	switch p {
	case WidthAuto, WidthSmall, WidthMedium, WidthLarge:
		return true
	}
	return false
}

// WidthForPreset returns the width in characters for a preset. termCols is
// the terminal width, or 0 when unknown; it only matters for auto.
func WidthForPreset(p WidthPreset, termCols int) int {
	switch p {
	case WidthSmall:
		return 80
	case WidthMedium:
		return 120
	case WidthLarge:
		return 160
	default:
		return AutoWidth(termCols)
	}
}

// AutoWidth fits the output to a terminal cols wide.
func AutoWidth(cols int) int {
	if cols <= 0 {
		return AutoWidthFallback
	}
	return max(AutoWidthMin, int(float64(cols)*AutoWidthRatio))
}

// ResolutionPreset represents a named output video size.
type ResolutionPreset string

const (
	Resolution480p   ResolutionPreset = "480p"
	Resolution720p   ResolutionPreset = "720p"
	Resolution1080p  ResolutionPreset = "1080p"
	ResolutionCustom ResolutionPreset = "custom"
)

// ResolutionPresets lists the presets in menu order.
var ResolutionPresets = []ResolutionPreset{Resolution480p, Resolution720p, Resolution1080p, ResolutionCustom}

// Dimensions returns the pixel size of a fixed preset. ok is false for custom
// and unknown presets.
func (p ResolutionPreset) Dimensions() (width, height int, ok bool) {
	switch p {
	case Resolution480p:
		return 640, 480, true
	case Resolution720p:
		return 1280, 720, true
	case Resolution1080p:
		return 1920, 1080, true
	}
	return 0, 0, false
}

// Valid reports whether p is a known preset.
func (p ResolutionPreset) Valid() bool {
	_, _, ok := p.Dimensions()
	return ok || p == ResolutionCustom
}

// PlaybackWidth resolves the configured width against a terminal cols wide.
// An explicit width wins over the preset.
func (c PlaybackConfig) PlaybackWidth(termCols int) int {
	if c.Width > 0 {
		return c.Width
	}
	return WidthForPreset(c.WidthPreset, termCols)
}

// Dimensions resolves the output pixel size for the configured preset.
func (c ConvertConfig) Dimensions() (width, height int) {
	if w, h, ok := c.Resolution.Dimensions(); ok {
		return w, h
	}
	return c.Width, c.Height
}
