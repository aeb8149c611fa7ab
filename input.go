package main

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/tmarche/starlab/geom"
)

// Input normalizes mouse and touch events into a single press/drag/release
// stream. Update must run once per frame so the previous state lines up
// with the previous animation frame, however many device events arrived in
// between.
type Input struct {
	currDown bool
	prevDown bool
	currPos  geom.Vec2
	prevPos  geom.Vec2

	touchIDs []ebiten.TouchID
}

func NewInput() *Input {
	return &Input{}
}

// Update polls the devices. The mouse wins when both are active; otherwise
// the first finger down is tracked until it lifts.
func (i *Input) Update() {
	i.prevDown = i.currDown
	i.prevPos = i.currPos

	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		i.currDown = true
		i.currPos = geom.Vec2{X: float64(x), Y: float64(y)}
		return
	}

	i.touchIDs = ebiten.AppendTouchIDs(i.touchIDs[:0])
	if len(i.touchIDs) > 0 {
		x, y := ebiten.TouchPosition(i.touchIDs[0])
		i.currDown = true
		i.currPos = geom.Vec2{X: float64(x), Y: float64(y)}
		return
	}

	i.currDown = false
}

// IsDown reports whether the pointer is currently pressed.
func (i *Input) IsDown() bool { return i.currDown }

// DidPress reports a press that started this frame.
func (i *Input) DidPress() bool { return i.currDown && !i.prevDown }

// DidRelease reports a release that happened this frame.
func (i *Input) DidRelease() bool { return !i.currDown && i.prevDown }

// Position returns the pointer position in screen coordinates. While
// released it reports the last known position.
func (i *Input) Position() geom.Vec2 { return i.currPos }

// Previous returns the pointer position from the previous frame.
func (i *Input) Previous() geom.Vec2 { return i.prevPos }
