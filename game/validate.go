package game

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
)

var (
	ErrInvalidRadius  = errors.New("invalid radius")
	ErrInvalidCourt   = errors.New("invalid court")
	ErrNonFinite      = errors.New("non-finite value")
	ErrResultMismatch = errors.New("engine result does not match scene")
)

func finite(f float32) bool {
	return !math32.IsNaN(f) && !math32.IsInf(f, 0)
}

func finiteVec(v Vec2) bool {
	return finite(v[0]) && finite(v[1])
}

func checkRadius(who string, r float32) error {
	if !finite(r) || r <= 0 {
		return fmt.Errorf("%w: %s scale %v", ErrInvalidRadius, who, r)
	}
	return nil
}

// Validate rejects input that would feed NaN or degenerate geometry into the
// engine. It runs before anything is built.
func Validate(t Tuning, ball Ball, court *Court, players []Player) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if court != nil {
		if err := validateCourt(*court); err != nil {
			return err
		}
	}

	if !finiteVec(ball.Position) || !finiteVec(ball.LinVel) || !finiteVec(ball.ShootDir) {
		return fmt.Errorf("%w: ball %+v", ErrNonFinite, ball)
	}
	// A finite shoot_dir can still overflow once scaled.
	if v := ShootOverride(ball.LinVel, ball.ShootDir, t.ShootSpeed); !finiteVec(v) {
		return fmt.Errorf("%w: ball velocity %v after shot", ErrNonFinite, v)
	}
	if err := checkRadius("ball", ballRadius(t, ball)); err != nil {
		return err
	}

	for _, p := range players {
		who := fmt.Sprintf("player %d", p.ID)
		if !finiteVec(p.Position) || !finiteVec(p.LinVel) || !finiteVec(p.Movement) {
			return fmt.Errorf("%w: %s %+v", ErrNonFinite, who, p)
		}
		if v := MoveOverride(p.LinVel, p.Movement, t.MoveSpeed); !finiteVec(v) {
			return fmt.Errorf("%w: %s velocity %v after movement", ErrNonFinite, who, v)
		}
		if err := checkRadius(who, playerRadius(t, p)); err != nil {
			return err
		}
	}
	return nil
}

func validateCourt(c Court) error {
	if !finite(c.Width) || !finite(c.Height) || !finite(c.GoalWidth) || !finite(c.GoalDepth) {
		return fmt.Errorf("%w: %+v", ErrNonFinite, c)
	}
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: size %vx%v", ErrInvalidCourt, c.Width, c.Height)
	case c.GoalWidth < 0 || c.GoalWidth > c.Height:
		return fmt.Errorf("%w: goal_width %v outside [0, height %v]", ErrInvalidCourt, c.GoalWidth, c.Height)
	case c.GoalDepth < 0:
		return fmt.Errorf("%w: goal_depth %v", ErrInvalidCourt, c.GoalDepth)
	}
	return nil
}
