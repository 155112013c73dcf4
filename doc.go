// Package ink captures freehand strokes and renders them as brush ink.
//
// # Overview
//
// An Engine turns raw pointer samples into a smoothed, variable-width ink
// path drawn by stamping a brush sprite along the stroke, about once per
// pixel of travel. It keeps the bounding box of all ink placed since the
// last clear, ready for cropping or hand-off to a vectorization step.
//
// # Quick Start
//
//	canvas := ink.NewCanvas(1024, 1024)
//	e, err := ink.NewEngine(canvas, ink.WithBrush(ink.SoftBrush(64, color.Black)))
//	if err != nil {
//	    return err
//	}
//
//	e.BeginStroke()
//	e.AddStrokePosition(ink.Sample{X: 100, Y: 100, T: 0})
//	e.AddStrokePosition(ink.Sample{X: 160, Y: 120, T: 16, Pressure: ink.PressureOf(0.7)})
//	e.EndStroke()
//
//	_ = canvas.SavePNG("stroke.png")
//
// # Brush Model
//
// Each drawn position is the mean of the last Config.BufferingSize samples.
// Without pressure the brush diameter shrinks linearly with velocity from
// MaxSize at rest down to MinSize; a pressure reading replaces that with
// MaxSize*pressure, floored at MinSize. When the pen lifts off while still
// accelerating, EndStroke extrapolates a short tail.
//
// Stamps are jittered by up to Config.JitterAmplitude pixels and a
// Config.SkipProbability share of them is dropped, so the ink texture does
// not repeat mechanically.
//
// # Coordinate System
//
// Samples are in raster surface pixels with the origin at the top-left.
// The display ratio set with SetRatio scales brush sizes when the raster
// resolution differs from on-screen pixels.
//
// # Related Packages
//
//   - session: pointer wiring, locking and stroke history around an Engine
//   - export: hand-off of finished ink to disk or S3
//   - pointer: websocket transport for browser pointer events
package ink
