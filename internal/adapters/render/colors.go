package render

import (
	"image/color"
	"strings"
)

// unitColors is the fixed type→color table for geological units. Keys are
// matched case-insensitively; unrecognized types fall back to gray.
var unitColors = map[string]color.NRGBA{
	"granite":   {R: 0xFF, G: 0x99, B: 0x99, A: 0xFF},
	"basalt":    {R: 0x99, G: 0x99, B: 0xFF, A: 0xFF},
	"sandstone": {R: 0xFF, G: 0xCC, B: 0x99, A: 0xFF},
	"limestone": {R: 0x99, G: 0xFF, B: 0x99, A: 0xFF},
	"shale":     {R: 0xCC, G: 0xCC, B: 0xCC, A: 0xFF},
	"quartz":    {R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
	"feldspar":  {R: 0xFF, G: 0xFF, B: 0x99, A: 0xFF},
	"unknown":   {R: 0x77, G: 0x77, B: 0x77, A: 0xFF},
}

// legendOrder keeps the legend deterministic. The legend is static: it
// enumerates the whole table, not just the types present in a survey.
var legendOrder = []string{
	"granite", "basalt", "sandstone", "limestone",
	"shale", "quartz", "feldspar", "unknown",
}

func colorForType(unitType string) color.NRGBA {
	if c, ok := unitColors[strings.ToLower(unitType)]; ok {
		return c
	}
	return unitColors["unknown"]
}

// withAlpha returns the color at the given opacity.
func withAlpha(c color.NRGBA, a uint8) color.NRGBA {
	c.A = a
	return c
}
