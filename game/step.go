package game

import "ballphys/physics"

// Stepper runs one tick per call. It holds only configuration, so a single
// Stepper can serve any number of goroutines.
type Stepper struct {
	engine physics.Engine
	tuning Tuning
}

func NewStepper(e physics.Engine, t Tuning) *Stepper {
	return &Stepper{engine: e, tuning: t}
}

func (s *Stepper) Tuning() Tuning { return s.tuning }

func (s *Stepper) Engine() physics.Engine { return s.engine }

var defaultStepper = NewStepper(physics.NewBox2D(), DefaultTuning())

// Step advances ball and players by one tick on the box2d engine with the
// default tuning.
func Step(ball Ball, court *Court, players []Player) (Ball, []Player, error) {
	return defaultStepper.Step(ball, court, players)
}

// Step builds a fresh world from the snapshot, simulates exactly one fixed
// tick and returns the new snapshot. Slot 0 of the scene is the ball, slot
// i+1 is players[i].
func (s *Stepper) Step(ball Ball, court *Court, players []Player) (Ball, []Player, error) {
	if err := Validate(s.tuning, ball, court, players); err != nil {
		return Ball{}, nil, err
	}

	scene := physics.Scene{
		Bodies: make([]physics.Body, 0, len(players)+1),
		Dt:     s.tuning.Dt,
	}
	if court != nil {
		scene.Chains = CourtChains(*court, s.tuning.WallRestitution)
	}
	scene.Bodies = append(scene.Bodies, BallBody(s.tuning, ball))
	for _, p := range players {
		scene.Bodies = append(scene.Bodies, PlayerBody(s.tuning, p))
	}

	states, err := s.engine.Simulate(scene)
	if err != nil {
		return Ball{}, nil, err
	}
	return decodeResult(ball, players, states)
}
