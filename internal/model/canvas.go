package model

import "strconv"

// pixelsPerUnit converts physical units to screen pixels for the editor
// canvas. It is never applied to persisted values.
var pixelsPerUnit = map[Unit]float64{
	UnitInch:       96,
	UnitCentimeter: 96 / 2.54,
}

// PixelsPerUnit returns the pixel scale for u. Unknown units report false
// and the inch scale.
func PixelsPerUnit(u Unit) (float64, bool) {
	if v, ok := pixelsPerUnit[u]; ok {
		return v, true
	}
	return pixelsPerUnit[UnitInch], false
}

// Insets are margins converted to pixels.
type Insets struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Canvas is the pixel size of the editor container for a template.
type Canvas struct {
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Padding     Insets  `json:"padding"`
	InnerWidth  float64 `json:"inner_width"`
	InnerHeight float64 `json:"inner_height"`
}

// Canvas projects the template's physical size and margins to pixels.
func (t Template) Canvas() Canvas {
	ppu, _ := PixelsPerUnit(t.Unit)
	c := Canvas{
		Width:  t.Width * ppu,
		Height: t.Height * ppu,
		Padding: Insets{
			Top:    t.Margins.Top * ppu,
			Right:  t.Margins.Right * ppu,
			Bottom: t.Margins.Bottom * ppu,
			Left:   t.Margins.Left * ppu,
		},
	}
	c.InnerWidth = c.Width - c.Padding.Left - c.Padding.Right
	c.InnerHeight = c.Height - c.Padding.Top - c.Padding.Bottom
	return c
}

func formatDim(v float64) string {
	if v == 0 {
		return "?"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func unitLabel(u Unit) string {
	if u == "" {
		return "?"
	}
	return string(u)
}
