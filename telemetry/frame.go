// Package telemetry publishes a per-frame snapshot of the tracking and
// viewfinder state to websocket listeners.
package telemetry

import (
	"github.com/milk9111/vrcam/tracking"
	"github.com/milk9111/vrcam/viewfinder"
	"gonum.org/v1/gonum/spatial/r3"
)

type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func fromR3(v r3.Vec) Vec {
	return Vec{X: v.X, Y: v.Y, Z: v.Z}
}

type Tracking struct {
	State    string `json:"state"`
	Entity   string `json:"entity,omitempty"`
	Position Vec    `json:"position"`
	Rotation Vec    `json:"rotation"`
	Velocity Vec    `json:"velocity"`
	Inertia  Vec    `json:"inertia"`
}

type Viewfinder struct {
	Enabled    bool    `json:"enabled"`
	Grid       bool    `json:"grid"`
	Zoom       float64 `json:"zoom"`
	TargetZoom float64 `json:"target_zoom"`
	Height     float64 `json:"height"`
	Aspect     string  `json:"aspect"`
	Status     string  `json:"status,omitempty"`
}

// Frame is one published snapshot.
type Frame struct {
	Session    string     `json:"session"`
	Frame      int        `json:"frame"`
	Time       float64    `json:"time"`
	Recording  bool       `json:"recording"`
	Tracking   Tracking   `json:"tracking"`
	Viewfinder Viewfinder `json:"viewfinder"`
}

// Snapshot builds a frame from the controller and viewfinder. Either may be
// nil.
func Snapshot(frame int, seconds float64, recording bool, c *tracking.Controller, v *viewfinder.Viewfinder) Frame {
	out := Frame{Frame: frame, Time: seconds, Recording: recording}

	out.Tracking.State = c.State().String()
	if h, ok := c.Entity(); ok {
		out.Tracking.Entity = h.String()
	}
	pose := c.Pose()
	out.Tracking.Position = fromR3(pose.Position)
	out.Tracking.Rotation = fromR3(pose.Rotation)
	out.Tracking.Velocity = fromR3(c.Velocity())
	out.Tracking.Inertia = fromR3(c.Inertia())

	if v != nil {
		out.Viewfinder.Enabled = v.Enabled()
		out.Viewfinder.Grid = v.GridEnabled()
		if l := v.Loop(); l != nil {
			out.Viewfinder.Zoom = l.CurrentZoom
			out.Viewfinder.TargetZoom = l.TargetZoom
			out.Viewfinder.Height = l.CurrentHeight
			out.Viewfinder.Aspect = l.AspectLabel()
		}
		if v.Enabled() {
			out.Viewfinder.Status = v.Status().Text
		}
	}
	return out
}
