package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

var ErrNotFound = errors.New("config: file not found")

// Keys names the keyboard binding of each trigger.
type Keys struct {
	Spawn      string
	Viewfinder string
	ZoomIn     string
	ZoomOut    string
	Aspect     string
	Grid       string
}

// Config is built once at startup and shared by pointer with the tracking
// controller and the viewfinder. Hot reload replaces the pointed-to value
// between frames.
type Config struct {
	DisableSmoothing bool

	BaseWidth         float64
	PresetHeights     []float64
	AspectRatioLabels []string

	ViewfinderSmoothingFactor float64
	AspectSmoothingFactor     float64

	DefaultZoom float64
	ZoomLevels  []float64

	PositionalSmoothingFactor        float64
	RotationSmoothingFactor          float64
	VehicleInertiaCompensationFactor float64
	TrackingOffset                   r3.Vec

	TrackedModel string
	SpawnTimeout time.Duration

	Keys Keys
}

func Default() Config {
	return Config{
		BaseWidth:                        0.5,
		PresetHeights:                    []float64{0.35, 0.27},
		AspectRatioLabels:                []string{"16:9", "21:9"},
		ViewfinderSmoothingFactor:        0.1,
		AspectSmoothingFactor:            0.1,
		DefaultZoom:                      1.0,
		ZoomLevels:                       []float64{0.80, 1.0, 1.5, 2.0, 3.0, 4.0},
		PositionalSmoothingFactor:        5.0,
		RotationSmoothingFactor:          0.1,
		VehicleInertiaCompensationFactor: 0.18,
		TrackedModel:                     "a_c_rat",
		SpawnTimeout:                     2 * time.Second,
		Keys: Keys{
			Spawn:      "L",
			Viewfinder: "L",
			ZoomIn:     "K",
			ZoomOut:    "J",
			Aspect:     "H",
			Grid:       "U",
		},
	}
}

// Label returns the aspect label for index i, falling back to the preset
// height when the label list is shorter than the height list.
func (c *Config) Label(i int) string {
	if c == nil {
		return ""
	}
	if i >= 0 && i < len(c.AspectRatioLabels) {
		return c.AspectRatioLabels[i]
	}
	if i >= 0 && i < len(c.PresetHeights) {
		return strconv.FormatFloat(c.PresetHeights[i], 'f', 2, 64)
	}
	return ""
}

// Set applies one key=value pair. Unknown keys are ignored. A malformed
// value leaves the current setting in place (lists substitute per-entry
// defaults) and is reported as an error.
func (c *Config) Set(key, value string) error {
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)

	switch key {
	case "DisableSmoothing":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		c.DisableSmoothing = v
	case "BaseWidth":
		return setFloat(key, value, &c.BaseWidth)
	case "PresetHeights":
		var err error
		c.PresetHeights, err = parseFloats(key, value, 0)
		return err
	case "AspectRatioLabels":
		parts := strings.Split(value, ",")
		labels := make([]string, 0, len(parts))
		for _, p := range parts {
			labels = append(labels, strings.TrimSpace(p))
		}
		c.AspectRatioLabels = labels
	case "ViewfinderSmoothingFactor":
		return setFloat(key, value, &c.ViewfinderSmoothingFactor)
	case "AspectSmoothingFactor":
		return setFloat(key, value, &c.AspectSmoothingFactor)
	case "DefaultZoom":
		return setFloat(key, value, &c.DefaultZoom)
	case "ZoomLevels":
		var err error
		c.ZoomLevels, err = parseFloats(key, value, 1.0)
		return err
	case "PositionalSmoothingFactor":
		return setFloat(key, value, &c.PositionalSmoothingFactor)
	case "RotationSmoothingFactor":
		return setFloat(key, value, &c.RotationSmoothingFactor)
	case "VehicleInertiaCompensationFactor":
		return setFloat(key, value, &c.VehicleInertiaCompensationFactor)
	case "TrackingOffset":
		parts := strings.Split(value, ",")
		if len(parts) != 3 {
			return fmt.Errorf("config: %s: want x,y,z, got %q", key, value)
		}
		vals, err := parseFloats(key, value, 0)
		if err != nil {
			return err
		}
		c.TrackingOffset = r3.Vec{X: vals[0], Y: vals[1], Z: vals[2]}
	case "TrackedModel":
		if value == "" {
			return fmt.Errorf("config: %s: empty model name", key)
		}
		c.TrackedModel = value
	case "SpawnTimeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		if d <= 0 {
			return fmt.Errorf("config: %s: must be positive, got %s", key, d)
		}
		c.SpawnTimeout = d
	case "SpawnKey":
		c.Keys.Spawn = value
	case "ViewfinderKey":
		c.Keys.Viewfinder = value
	case "ZoomInKey":
		c.Keys.ZoomIn = value
	case "ZoomOutKey":
		c.Keys.ZoomOut = value
	case "AspectKey":
		c.Keys.Aspect = value
	case "GridKey":
		c.Keys.Grid = value
	}
	return nil
}

func setFloat(key, value string, dst *float64) error {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*dst = v
	return nil
}

// parseFloats splits a comma list. Entries that do not parse become def; the
// first failure is returned alongside the full list.
func parseFloats(key, value string, def float64) ([]float64, error) {
	parts := strings.Split(value, ",")
	out := make([]float64, 0, len(parts))
	var firstErr error
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("config: %s[%d]: %q is not a number, using %g", key, i, strings.TrimSpace(p), def)
			}
			v = def
		}
		out = append(out, v)
	}
	return out, firstErr
}

// Parse reads the flat key=value form on top of the defaults. Blank lines,
// lines starting with ';' and lines without '=' are skipped.
func Parse(r io.Reader) (Config, []error) {
	cfg := Default()
	var warnings []error

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		if err := cfg.Set(key, value); err != nil {
			warnings = append(warnings, fmt.Errorf("line %d: %w", lineNo, err))
		}
	}
	if err := sc.Err(); err != nil {
		warnings = append(warnings, fmt.Errorf("config: read: %w", err))
	}
	return cfg, warnings
}

// Load reads path, choosing the YAML form for .yaml/.yml and the flat form
// otherwise. A missing file returns the defaults and an error wrapping
// ErrNotFound. Malformed values are logged and skipped.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return Default(), fmt.Errorf("config: load %s: %w", path, err)
	}

	var (
		cfg      Config
		warnings []error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		cfg, warnings, err = ParseYAML(data)
		if err != nil {
			return Default(), fmt.Errorf("config: load %s: %w", path, err)
		}
	default:
		cfg, warnings = Parse(strings.NewReader(string(data)))
	}

	for _, w := range warnings {
		log.Printf("config: %s: %v", path, w)
	}
	return cfg, nil
}

// Encode writes cfg in the flat key=value form.
func Encode(w io.Writer, cfg Config) error {
	bw := bufio.NewWriter(w)
	line := func(key, value string) {
		fmt.Fprintf(bw, "%s=%s\n", key, value)
	}

	line("DisableSmoothing", strconv.FormatBool(cfg.DisableSmoothing))
	line("BaseWidth", formatFloat(cfg.BaseWidth))
	line("PresetHeights", joinFloats(cfg.PresetHeights))
	line("AspectRatioLabels", strings.Join(cfg.AspectRatioLabels, ","))
	line("ViewfinderSmoothingFactor", formatFloat(cfg.ViewfinderSmoothingFactor))
	line("AspectSmoothingFactor", formatFloat(cfg.AspectSmoothingFactor))
	line("DefaultZoom", formatFloat(cfg.DefaultZoom))
	line("ZoomLevels", joinFloats(cfg.ZoomLevels))
	line("PositionalSmoothingFactor", formatFloat(cfg.PositionalSmoothingFactor))
	line("RotationSmoothingFactor", formatFloat(cfg.RotationSmoothingFactor))
	line("VehicleInertiaCompensationFactor", formatFloat(cfg.VehicleInertiaCompensationFactor))
	line("TrackingOffset", joinFloats([]float64{cfg.TrackingOffset.X, cfg.TrackingOffset.Y, cfg.TrackingOffset.Z}))
	line("TrackedModel", cfg.TrackedModel)
	line("SpawnTimeout", cfg.SpawnTimeout.String())
	line("SpawnKey", cfg.Keys.Spawn)
	line("ViewfinderKey", cfg.Keys.Viewfinder)
	line("ZoomInKey", cfg.Keys.ZoomIn)
	line("ZoomOutKey", cfg.Keys.ZoomOut)
	line("AspectKey", cfg.Keys.Aspect)
	line("GridKey", cfg.Keys.Grid)

	return bw.Flush()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func joinFloats(vals []float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = formatFloat(v)
	}
	return strings.Join(parts, ",")
}
