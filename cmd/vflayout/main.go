// Command vflayout prints the viewfinder overlay for a settings file as YAML.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image/color"
	"io"
	"log"
	"os"

	"github.com/milk9111/vrcam/config"
	"github.com/milk9111/vrcam/host"
	"github.com/milk9111/vrcam/viewfinder"
	"gopkg.in/yaml.v3"
)

type window struct {
	Left   float64 `yaml:"left"`
	Right  float64 `yaml:"right"`
	Top    float64 `yaml:"top"`
	Bottom float64 `yaml:"bottom"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type rect struct {
	Kind  string  `yaml:"kind"`
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	W     float64 `yaml:"w"`
	H     float64 `yaml:"h"`
	Color string  `yaml:"color"`
}

type status struct {
	Text  string `yaml:"text"`
	Color string `yaml:"color"`
}

type report struct {
	Zoom   float64 `yaml:"zoom"`
	Height float64 `yaml:"height"`
	Aspect string  `yaml:"aspect"`
	Steps  int     `yaml:"steps"`
	Window window  `yaml:"window"`
	Status status  `yaml:"status"`
	Rects  []rect  `yaml:"rects"`
}

type options struct {
	zoomIndex     int
	aspectIndex   int
	steps         int
	grid          bool
	recording     bool
	displayAspect float64
}

// buildReport drives a smoothing loop from its initial state to the requested
// zoom and aspect. steps < 0 snaps to the targets.
func buildReport(cfg *config.Config, opts options) report {
	loop := viewfinder.NewLoop(cfg)
	for loop.ZoomIndex() < opts.zoomIndex && loop.ZoomIn() {
	}
	for loop.ZoomIndex() > opts.zoomIndex && loop.ZoomOut() {
	}
	for i := 0; i < len(cfg.PresetHeights) && loop.AspectIndex() != opts.aspectIndex; i++ {
		loop.CycleAspect()
	}

	if opts.steps < 0 {
		loop.CurrentZoom = loop.TargetZoom
		loop.CurrentHeight = loop.TargetHeight
	}
	for i := 0; i < opts.steps; i++ {
		loop.Step()
	}

	l := viewfinder.Compute(cfg.BaseWidth, loop.CurrentHeight, loop.CurrentZoom, opts.grid)
	st := viewfinder.DeriveStatus(loop.CurrentZoom, loop.AspectLabel(), opts.recording, opts.displayAspect)

	out := report{
		Zoom:   loop.CurrentZoom,
		Height: loop.CurrentHeight,
		Aspect: loop.AspectLabel(),
		Steps:  opts.steps,
		Window: window{
			Left:   l.Left,
			Right:  l.Right,
			Top:    l.Top,
			Bottom: l.Bottom,
			Width:  l.EffectiveWidth,
			Height: l.EffectiveHeight,
		},
		Status: status{Text: st.Text, Color: hexColor(st.Color)},
	}
	add := func(kind string, rs []host.Rect) {
		for _, r := range rs {
			out.Rects = append(out.Rects, rect{Kind: kind, X: r.X, Y: r.Y, W: r.W, H: r.H, Color: hexColor(r.Color)})
		}
	}
	add("mask", l.Mask[:])
	add("border", l.Border[:])
	add("grid", l.Grid)
	return out
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("vflayout", flag.ContinueOnError)
	configPath := fs.String("config", "vrcam.ini", "settings file (.ini, .yaml or .yml)")
	zoom := fs.Int("zoom", 1, "zoom level index")
	aspect := fs.Int("aspect", 0, "aspect preset index")
	steps := fs.Int("steps", -1, "smoothing steps to run from the initial state; negative snaps to the target")
	grid := fs.Bool("grid", true, "include the rule of thirds grid")
	recording := fs.Bool("recording", false, "report recording as active")
	display := fs.Float64("display", viewfinder.RequiredAspectRatio, "display aspect ratio")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		if !errors.Is(err, config.ErrNotFound) {
			return err
		}
		log.Printf("vflayout: %v, using defaults", err)
	}

	rep := buildReport(&cfg, options{
		zoomIndex:     *zoom,
		aspectIndex:   *aspect,
		steps:         *steps,
		grid:          *grid,
		recording:     *recording,
		displayAspect: *display,
	})

	enc := yaml.NewEncoder(stdout)
	enc.SetIndent(2)
	if err := enc.Encode(rep); err != nil {
		return err
	}
	return enc.Close()
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}
