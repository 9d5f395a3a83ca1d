package game

import "github.com/go-gl/mathgl/mgl32"

// Per-call snapshot supplied by the host. Nothing here outlives a Step.

type Vec2 = mgl32.Vec2

type Ball struct {
	Position Vec2
	LinVel   Vec2
	ShootDir Vec2 // one-shot, zero when unused
	Scale    float32
}

type Player struct {
	ID       int32
	Position Vec2
	LinVel   Vec2
	Movement Vec2 // one-shot per axis
	Scale    float32
}

// Court is centred on the origin, +x toward the right goal. Goal openings sit
// on the short sides, GoalWidth wide, with boxes GoalDepth deep behind them.
type Court struct {
	Width     float32
	Height    float32
	GoalWidth float32
	GoalDepth float32
}
