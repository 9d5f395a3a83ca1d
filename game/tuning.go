package game

import (
	"errors"
	"fmt"
	"math"
)

const (
	ShootSpeed        = 18.0 // ball speed per unit of shoot_dir
	MoveSpeed         = 10.0 // player speed per unit of movement, per axis
	BallDamping       = 0.5
	PlayerDamping     = 5.0 // players stop much sooner than the ball
	WallRestitution   = 1.0
	EntityRestitution = 0.9
	EntityDensity     = 1.0
	TickDt            = 1.0 / 60.0
	BallRadius        = 1.0 // used when UseScale is off
	PlayerRadius      = 1.0
)

// Tuning carries every constant a step depends on. DefaultTuning matches the
// values above; config may override any of them.
type Tuning struct {
	ShootSpeed        float32 `env:"SHOOT_SPEED"`
	MoveSpeed         float32 `env:"MOVE_SPEED"`
	BallDamping       float64 `env:"BALL_DAMPING"`
	PlayerDamping     float64 `env:"PLAYER_DAMPING"`
	WallRestitution   float64 `env:"WALL_RESTITUTION"`
	EntityRestitution float64 `env:"ENTITY_RESTITUTION"`
	Density           float64 `env:"DENSITY"`
	Dt                float64 `env:"DT"`

	// UseScale takes collider radii from each entity's Scale. When false the
	// Scale field is ignored (and still passed through) and the fixed radii
	// below apply.
	UseScale     bool    `env:"USE_SCALE"`
	BallRadius   float32 `env:"BALL_RADIUS"`
	PlayerRadius float32 `env:"PLAYER_RADIUS"`

	// BallBullet enables continuous collision of the ball against players.
	BallBullet bool `env:"BALL_BULLET"`
}

func DefaultTuning() Tuning {
	return Tuning{
		ShootSpeed:        ShootSpeed,
		MoveSpeed:         MoveSpeed,
		BallDamping:       BallDamping,
		PlayerDamping:     PlayerDamping,
		WallRestitution:   WallRestitution,
		EntityRestitution: EntityRestitution,
		Density:           EntityDensity,
		Dt:                TickDt,
		UseScale:          true,
		BallRadius:        BallRadius,
		PlayerRadius:      PlayerRadius,
		BallBullet:        true,
	}
}

var ErrInvalidTuning = errors.New("invalid tuning")

// Validate rejects tunings that would hand the engine NaN, Inf or a
// negative rate. Fixed radii are checked per step, and only when used.
func (t Tuning) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"shoot_speed", float64(t.ShootSpeed)},
		{"move_speed", float64(t.MoveSpeed)},
		{"ball_damping", t.BallDamping},
		{"player_damping", t.PlayerDamping},
		{"wall_restitution", t.WallRestitution},
		{"entity_restitution", t.EntityRestitution},
		{"density", t.Density},
		{"dt", t.Dt},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v < 0 {
			return fmt.Errorf("%w: %s = %v", ErrInvalidTuning, f.name, f.v)
		}
	}
	switch {
	case t.Dt == 0:
		return fmt.Errorf("%w: dt must be positive", ErrInvalidTuning)
	case t.WallRestitution > 1 || t.EntityRestitution > 1:
		return fmt.Errorf("%w: restitution above 1 (wall %v, entity %v)", ErrInvalidTuning, t.WallRestitution, t.EntityRestitution)
	}
	return nil
}
