package game

import "ballphys/physics"

// ShootOverride replaces vel with shoot*speed when shoot is non-zero.
func ShootOverride(vel, shoot Vec2, speed float32) Vec2 {
	if shoot[0] != 0 || shoot[1] != 0 {
		return shoot.Mul(speed)
	}
	return vel
}

// MoveOverride forces each axis of vel that has non-zero movement and leaves
// the other axis alone.
func MoveOverride(vel, movement Vec2, speed float32) Vec2 {
	if movement[0] != 0 {
		vel[0] = movement[0] * speed
	}
	if movement[1] != 0 {
		vel[1] = movement[1] * speed
	}
	return vel
}

func ballRadius(t Tuning, b Ball) float32 {
	if t.UseScale {
		return b.Scale
	}
	return t.BallRadius
}

func playerRadius(t Tuning, p Player) float32 {
	if t.UseScale {
		return p.Scale
	}
	return t.PlayerRadius
}

func BallBody(t Tuning, b Ball) physics.Body {
	return physics.Body{
		Position:      widen(b.Position),
		Velocity:      widen(ShootOverride(b.LinVel, b.ShootDir, t.ShootSpeed)),
		Radius:        float64(ballRadius(t, b)),
		LinearDamping: t.BallDamping,
		Restitution:   t.EntityRestitution,
		Density:       t.Density,
		Bullet:        t.BallBullet,
	}
}

func PlayerBody(t Tuning, p Player) physics.Body {
	return physics.Body{
		Position:      widen(p.Position),
		Velocity:      widen(MoveOverride(p.LinVel, p.Movement, t.MoveSpeed)),
		Radius:        float64(playerRadius(t, p)),
		LinearDamping: t.PlayerDamping,
		Restitution:   t.EntityRestitution,
		Density:       t.Density,
	}
}

func widen(v Vec2) physics.Vec2 {
	return physics.Vec2{float64(v[0]), float64(v[1])}
}

func narrow(v physics.Vec2) Vec2 {
	return Vec2{float32(v[0]), float32(v[1])}
}
