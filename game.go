package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/vrcam/config"
	"github.com/milk9111/vrcam/input"
	"github.com/milk9111/vrcam/render"
	"github.com/milk9111/vrcam/scenarios"
	"github.com/milk9111/vrcam/sim"
	"github.com/milk9111/vrcam/telemetry"
	"github.com/milk9111/vrcam/tracking"
	"github.com/milk9111/vrcam/viewfinder"
	"golang.design/x/clipboard"
)

const (
	baseWidth  = 1280
	baseHeight = 720

	missingConfigDuration = 5 * time.Second
)

type Options struct {
	ConfigPath    string
	Scenario      string
	TelemetryAddr string
	Debug         bool
}

type Game struct {
	opts Options
	cfg  *config.Config

	world      *sim.World
	script     *sim.Script
	controller *tracking.Controller
	viewfinder *viewfinder.Viewfinder

	input    *input.Input
	renderer *render.Renderer
	watcher  *config.Watcher

	telemetry *telemetry.Server
	stop      context.CancelFunc

	changes scenarios.Changes

	help      *ebitenui.UI
	showHelp  bool
	clipboard bool
}

func NewGame(opts Options) (*Game, error) {
	cfg, cfgErr := config.Load(opts.ConfigPath)
	if cfgErr != nil && !errors.Is(cfgErr, config.ErrNotFound) {
		log.Printf("%v", cfgErr)
	}

	renderer, err := render.New()
	if err != nil {
		return nil, err
	}

	g := &Game{
		opts:     opts,
		cfg:      &cfg,
		renderer: renderer,
	}

	bindings, errs := input.FromConfig(cfg.Keys)
	for _, err := range errs {
		log.Printf("game: key binding: %v", err)
	}
	g.input = input.New(bindings)

	if err := g.loadScenario(opts.Scenario); err != nil {
		return nil, err
	}
	if errors.Is(cfgErr, config.ErrNotFound) {
		log.Printf("game: %v, using defaults", cfgErr)
		g.world.ShowSubtitle(filepath.Base(opts.ConfigPath)+" not found!", missingConfigDuration)
	}

	watch := []string{opts.ConfigPath}
	if fi, err := os.Stat(scenarios.Dir); err == nil && fi.IsDir() {
		watch = append(watch, scenarios.Dir)
	}
	if w, err := config.NewWatcher(watch...); err != nil {
		log.Printf("game: hot reload disabled: %v", err)
	} else {
		g.watcher = w
	}

	if err := clipboard.Init(); err != nil {
		log.Printf("game: clipboard unavailable: %v", err)
	} else {
		g.clipboard = true
	}

	if opts.TelemetryAddr != "" {
		ctx, cancel := context.WithCancel(context.Background())
		g.stop = cancel
		g.telemetry = telemetry.NewServer(telemetry.NewBroadcaster())
		go func() {
			if err := g.telemetry.ListenAndServe(ctx, opts.TelemetryAddr); err != nil {
				log.Printf("telemetry: %v", err)
			}
		}()
	}

	g.help = NewHelpUI(g)
	return g, nil
}

// loadScenario replaces the world and everything bound to it.
func (g *Game) loadScenario(name string) error {
	spec, err := scenarios.LoadSpec(name)
	if err != nil {
		return err
	}
	world, err := sim.NewWorld(spec)
	if err != nil {
		return fmt.Errorf("game: scenario %s: %w", name, err)
	}

	var script *sim.Script
	if spec.Script != "" {
		script, err = sim.LoadScript(spec.Script, world)
		if err != nil {
			return err
		}
	}

	controller := tracking.NewController(g.cfg, world)
	controller.SetClock(world.Now)

	vf := viewfinder.New(g.cfg, world)
	if g.viewfinder != nil && g.viewfinder.Enabled() {
		vf.Toggle()
	}

	g.world = world
	g.script = script
	g.controller = controller
	g.viewfinder = vf
	log.Printf("game: scenario %s loaded (%s)", spec.Name, spec.Description)
	return nil
}

func (g *Game) reloadConfig() {
	cfg, err := config.Load(g.opts.ConfigPath)
	if err != nil {
		log.Printf("game: reload: %v", err)
		return
	}
	// Controller and viewfinder hold g.cfg; swap the value in place.
	*g.cfg = cfg
	g.viewfinder.Reconfigure(g.cfg)

	bindings, errs := input.FromConfig(cfg.Keys)
	for _, err := range errs {
		log.Printf("game: key binding: %v", err)
	}
	g.input.SetBindings(bindings)
	g.help = NewHelpUI(g)
	log.Printf("game: config reloaded from %s", g.opts.ConfigPath)
}

func (g *Game) drainReloads() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case path, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			if filepath.Clean(path) == filepath.Clean(g.opts.ConfigPath) {
				g.reloadConfig()
				continue
			}
			if !g.changes.Fresh(path) {
				continue
			}
			if err := g.loadScenario(g.opts.Scenario); err != nil {
				log.Printf("game: reload scenario: %v", err)
			}
		case err, ok := <-g.watcher.Errors:
			if !ok {
				g.watcher = nil
				return
			}
			log.Printf("game: watcher: %v", err)
		default:
			return
		}
	}
}

func (g *Game) copySettings() {
	if !g.clipboard {
		return
	}
	var buf bytes.Buffer
	if err := config.Encode(&buf, *g.cfg); err != nil {
		log.Printf("game: encode settings: %v", err)
		return
	}
	fmt.Fprintf(&buf, "# frame=%d tracking=%s", g.world.Frame(), g.controller.State())
	if g.viewfinder.Enabled() {
		fmt.Fprintf(&buf, " status=%q", g.viewfinder.Status().Text)
	}
	buf.WriteByte('\n')
	clipboard.Write(clipboard.FmtText, buf.Bytes())
	g.world.ShowSubtitle("Settings copied to clipboard", 2*time.Second)
}

func (g *Game) Update() error {
	g.drainReloads()
	g.world.BeginFrame()

	g.input.Update()
	if g.input.Fired(input.ActionQuit) {
		g.Close()
		return ebiten.Termination
	}
	if g.input.Fired(input.ActionHelp) {
		g.showHelp = !g.showHelp
	}
	if g.showHelp {
		g.help.Update()
	}
	if g.input.Fired(input.ActionCopy) {
		g.copySettings()
	}

	if g.input.Fired(input.ActionSpawn) {
		_ = g.controller.RequestSpawn()
	}
	g.input.DriveViewfinder(g.viewfinder)

	_ = g.script.Update()
	g.controller.Update()
	g.viewfinder.Update()

	if g.telemetry != nil {
		g.telemetry.Publish(telemetry.Snapshot(g.world.Frame(), g.world.Elapsed().Seconds(), g.world.IsRecordingActive(), g.controller, g.viewfinder))
	}

	g.world.Step(time.Second / time.Duration(ebiten.TPS()))
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.renderer.DrawScene(screen, g.world)
	g.renderer.DrawOverlay(screen, g.world.DrawList())
	if s, ok := g.world.Subtitle(); ok {
		g.renderer.DrawSubtitle(screen, s)
	}
	g.renderer.DrawMap(screen, g.world)

	if g.opts.Debug {
		pose := g.controller.Pose()
		g.renderer.DrawDebug(screen, []string{
			fmt.Sprintf("FPS: %.1f  frame: %d", ebiten.ActualFPS(), g.world.Frame()),
			fmt.Sprintf("tracking: %s", g.controller.State()),
			fmt.Sprintf("pos: %.2f %.2f %.2f", pose.Position.X, pose.Position.Y, pose.Position.Z),
			fmt.Sprintf("vel: %.2f %.2f %.2f", g.controller.Velocity().X, g.controller.Velocity().Y, g.controller.Velocity().Z),
			fmt.Sprintf("inertia: %.2f %.2f %.2f", g.controller.Inertia().X, g.controller.Inertia().Y, g.controller.Inertia().Z),
		})
	}

	if g.showHelp {
		g.help.Draw(screen)
	}
}

// Close stops background work.
func (g *Game) Close() {
	if g.stop != nil {
		g.stop()
	}
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
