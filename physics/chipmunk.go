package physics

import (
	"math"
	"sync"

	"github.com/jakecoffman/cp"
)

// cp numbers shapes from a package level counter, so concurrent sessions on
// this engine run their steps one at a time.
var chipmunkMu sync.Mutex

// Chipmunk runs the scene through a fresh cp.Space per call. Chipmunk has no
// continuous collision, so very fast bodies may tunnel thin walls.
type Chipmunk struct {
	Iterations int
	// SegmentRadius thickens wall segments.
	SegmentRadius float64
}

func NewChipmunk() *Chipmunk {
	return &Chipmunk{Iterations: 10, SegmentRadius: 0.01}
}

func (e *Chipmunk) Name() string { return EngineChipmunk }

func (e *Chipmunk) Simulate(scene Scene) ([]BodyState, error) {
	if err := checkScene(scene); err != nil {
		return nil, err
	}

	chipmunkMu.Lock()
	defer chipmunkMu.Unlock()

	space := cp.NewSpace()
	space.SetGravity(cp.Vector{})
	space.Iterations = uint(e.Iterations)

	for _, c := range scene.Chains {
		for i := 0; i+1 < len(c.Vertices); i++ {
			seg := cp.NewSegment(space.StaticBody, cpvec(c.Vertices[i]), cpvec(c.Vertices[i+1]), e.SegmentRadius)
			seg.SetElasticity(c.Restitution)
			space.AddShape(seg)
		}
	}

	bodies := make([]*cp.Body, len(scene.Bodies))
	for i, b := range scene.Bodies {
		mass := density(b) * math.Pi * b.Radius * b.Radius
		body := cp.NewBody(mass, cp.MomentForCircle(mass, 0, b.Radius, cp.Vector{}))
		body.SetPosition(cpvec(b.Position))
		body.SetVelocityVector(cpvec(b.Velocity))
		body.SetVelocityUpdateFunc(dampedVelocity(b.LinearDamping))
		space.AddBody(body)

		shape := cp.NewCircle(body, b.Radius, cp.Vector{})
		shape.SetElasticity(b.Restitution)
		space.AddShape(shape)

		bodies[i] = body
	}

	space.Step(scene.Dt)

	out := make([]BodyState, len(bodies))
	for i, body := range bodies {
		p := body.Position()
		v := body.Velocity()
		out[i] = BodyState{
			Position: Vec2{p.X, p.Y},
			Velocity: Vec2{v.X, v.Y},
		}
	}
	return out, nil
}

// dampedVelocity applies v *= 1/(1+dt*c) after the regular integration, the
// same decay law box2d uses for linear damping.
func dampedVelocity(c float64) cp.BodyVelocityFunc {
	return func(body *cp.Body, gravity cp.Vector, damping, dt float64) {
		cp.BodyUpdateVelocity(body, gravity, damping, dt)
		body.SetVelocityVector(body.Velocity().Mult(1 / (1 + dt*c)))
	}
}

func cpvec(v Vec2) cp.Vector {
	return cp.Vector{X: v[0], Y: v[1]}
}
