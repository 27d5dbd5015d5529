package viewfinder

import (
	"fmt"
	"image/color"
	"math"
)

const (
	// RequiredAspectRatio is 5:4, the only display ratio the overlay is laid
	// out for.
	RequiredAspectRatio = 1.25
	AspectTolerance     = 0.01

	TextScale = 0.35

	AspectWarning = "Please change the aspect ratio to 5:4 in the graphics settings!"
)

var (
	WarningColor = color.RGBA{R: 255, G: 255, B: 153, A: 255}
	AlertColor   = color.RGBA{R: 255, G: 100, B: 100, A: 255}
	NeutralColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

type Status struct {
	Text  string
	Color color.RGBA
}

// DeriveStatus picks the status line. A display that is not 5:4 always
// yields the warning, whatever the recording state.
func DeriveStatus(zoom float64, aspectLabel string, recording bool, actualAspect float64) Status {
	if math.Abs(actualAspect-RequiredAspectRatio) > AspectTolerance {
		return Status{Text: AspectWarning, Color: WarningColor}
	}

	rec := "Inactive"
	c := NeutralColor
	if recording {
		rec = "RECORDING"
		c = AlertColor
	}
	return Status{
		Text:  fmt.Sprintf("%.2fx  %s  Recording: %s", zoom, aspectLabel, rec),
		Color: c,
	}
}
