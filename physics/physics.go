// Package physics is the boundary to the rigid body engine. A Scene describes
// everything one tick needs; an Engine turns it into final body states.
package physics

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

type Vec2 = mgl64.Vec2

// Body is a dynamic circle. Every body owns exactly one collider.
type Body struct {
	Position      Vec2
	Velocity      Vec2
	Radius        float64
	LinearDamping float64
	Restitution   float64
	Density       float64
	// Bullet asks for continuous collision against other dynamic bodies too.
	Bullet bool
}

// Chain is an open polyline of fixed segments with no owning dynamic body.
type Chain struct {
	Vertices    []Vec2
	Restitution float64
}

type Scene struct {
	Bodies []Body
	Chains []Chain
	Dt     float64
}

// BodyState is the read-back of one body after the step.
type BodyState struct {
	Position Vec2
	Velocity Vec2
}

// Engine advances a freshly built world by one fixed step under zero gravity.
// The returned slice is index aligned with Scene.Bodies.
type Engine interface {
	Name() string
	Simulate(scene Scene) ([]BodyState, error)
}

var (
	ErrUnknownEngine = errors.New("unknown physics engine")
	ErrBadScene      = errors.New("bad scene")
	ErrTooFast       = errors.New("body faster than the engine can step")
)

// SpeedLimiter is implemented by engines that cap how far a body may move in
// one step. Simulate rejects faster bodies with ErrTooFast.
type SpeedLimiter interface {
	MaxSpeed(dt float64) float64
}

const (
	EngineBox2D    = "box2d"
	EngineChipmunk = "chipmunk"
)

// New returns the engine registered under name with its default settings.
func New(name string) (Engine, error) {
	switch name {
	case "", EngineBox2D:
		return NewBox2D(), nil
	case EngineChipmunk:
		return NewChipmunk(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, name)
}

func checkScene(s Scene) error {
	if s.Dt <= 0 {
		return fmt.Errorf("%w: dt %v", ErrBadScene, s.Dt)
	}
	for i, b := range s.Bodies {
		if b.Radius <= 0 {
			return fmt.Errorf("%w: body %d radius %v", ErrBadScene, i, b.Radius)
		}
	}
	for i, c := range s.Chains {
		if len(c.Vertices) < 2 {
			return fmt.Errorf("%w: chain %d has %d vertices", ErrBadScene, i, len(c.Vertices))
		}
	}
	return nil
}
