package game

import (
	"fmt"

	"ballphys/physics"
)

// decodeResult maps engine states back onto the caller's records. Identity
// and scale come from the input; one-shot inputs are cleared.
func decodeResult(ball Ball, players []Player, states []physics.BodyState) (Ball, []Player, error) {
	if len(states) != len(players)+1 {
		return Ball{}, nil, fmt.Errorf("%w: %d states for %d bodies", ErrResultMismatch, len(states), len(players)+1)
	}

	outBall := Ball{
		Position: narrow(states[0].Position),
		LinVel:   narrow(states[0].Velocity),
		Scale:    ball.Scale,
	}

	outPlayers := make([]Player, len(players))
	for i, p := range players {
		st := states[i+1]
		outPlayers[i] = Player{
			ID:       p.ID,
			Position: narrow(st.Position),
			LinVel:   narrow(st.Velocity),
			Scale:    p.Scale,
		}
	}
	return outBall, outPlayers, nil
}
