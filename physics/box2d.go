package physics

import (
	"fmt"
	"sync"

	"github.com/ByteArena/box2d"
)

// box2d keeps package level TOI/GJK counters and builds its contact tables
// lazily on first use, so worlds from different goroutines must not step at
// the same time. Concurrent sessions on this engine therefore run their steps
// one at a time.
var box2dMu sync.Mutex

// Box2D runs the scene through a fresh box2d world per call.
type Box2D struct {
	VelocityIterations int
	PositionIterations int
}

var _ SpeedLimiter = (*Box2D)(nil)

func NewBox2D() *Box2D {
	return &Box2D{VelocityIterations: 8, PositionIterations: 3}
}

func (e *Box2D) Name() string { return EngineBox2D }

// MaxSpeed is the fastest a body can move in one step of dt. box2d clamps
// any larger per-step translation instead of failing.
func (e *Box2D) MaxSpeed(dt float64) float64 {
	return box2d.B2_maxTranslation / dt
}

func (e *Box2D) Simulate(scene Scene) ([]BodyState, error) {
	if err := checkScene(scene); err != nil {
		return nil, err
	}
	limit := e.MaxSpeed(scene.Dt)
	for i, b := range scene.Bodies {
		if v := b.Velocity.Len(); v > limit {
			return nil, fmt.Errorf("%w: body %d speed %v above %v", ErrTooFast, i, v, limit)
		}
	}

	box2dMu.Lock()
	defer box2dMu.Unlock()

	world := box2d.MakeB2World(box2d.MakeB2Vec2(0, 0))
	world.SetAllowSleeping(false)

	// box2d hangs every fixture off a body; chains go on one static ground
	// body, which has infinite mass and never moves.
	if len(scene.Chains) > 0 {
		gd := box2d.MakeB2BodyDef()
		gd.Type = box2d.B2BodyType.B2_staticBody
		ground := world.CreateBody(&gd)
		if ground == nil {
			return nil, fmt.Errorf("box2d: world locked while creating ground")
		}
		for _, c := range scene.Chains {
			verts := make([]box2d.B2Vec2, len(c.Vertices))
			for i, v := range c.Vertices {
				verts[i] = b2vec(v)
			}
			chain := box2d.MakeB2ChainShape()
			chain.CreateChain(verts, len(verts))

			fd := box2d.MakeB2FixtureDef()
			fd.Shape = &chain
			fd.Restitution = c.Restitution
			ground.CreateFixtureFromDef(&fd)
		}
	}

	bodies := make([]*box2d.B2Body, len(scene.Bodies))
	for i, b := range scene.Bodies {
		bd := box2d.MakeB2BodyDef()
		bd.Type = box2d.B2BodyType.B2_dynamicBody
		bd.Position = b2vec(b.Position)
		bd.LinearVelocity = b2vec(b.Velocity)
		bd.LinearDamping = b.LinearDamping
		bd.Bullet = b.Bullet
		body := world.CreateBody(&bd)
		if body == nil {
			return nil, fmt.Errorf("box2d: world locked while creating body %d", i)
		}

		circle := box2d.MakeB2CircleShape()
		circle.M_radius = b.Radius

		fd := box2d.MakeB2FixtureDef()
		fd.Shape = &circle
		fd.Density = density(b)
		fd.Restitution = b.Restitution
		body.CreateFixtureFromDef(&fd)

		bodies[i] = body
	}

	world.Step(scene.Dt, e.VelocityIterations, e.PositionIterations)

	out := make([]BodyState, len(bodies))
	for i, body := range bodies {
		p := body.GetPosition()
		v := body.GetLinearVelocity()
		out[i] = BodyState{
			Position: Vec2{p.X, p.Y},
			Velocity: Vec2{v.X, v.Y},
		}
	}
	return out, nil
}

func b2vec(v Vec2) box2d.B2Vec2 {
	return box2d.MakeB2Vec2(v[0], v[1])
}

func density(b Body) float64 {
	if b.Density > 0 {
		return b.Density
	}
	return 1
}
