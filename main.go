package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	configPath := flag.String("config", "vrcam.ini", "settings file (.ini, .yaml or .yml)")
	scenario := flag.String("scenario", "street", "scenario name in scenarios/ (basename, .yaml optional)")
	telemetryAddr := flag.String("telemetry", "", "serve per-frame telemetry on this address, e.g. :8089")
	debug := flag.Bool("debug", false, "enable debug mode")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	flag.Parse()

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("vrcam")

	game, err := NewGame(Options{
		ConfigPath:    *configPath,
		Scenario:      *scenario,
		TelemetryAddr: *telemetryAddr,
		Debug:         *debug,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer game.Close()

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
