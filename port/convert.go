package port

import (
	"ballphys/game"
	"ballphys/protocol"
)

func toGame(req protocol.Step) (game.Ball, *game.Court, []game.Player) {
	ball := game.Ball{
		Position: game.Vec2(req.Ball.Position),
		LinVel:   game.Vec2(req.Ball.LinVel),
		ShootDir: game.Vec2(req.Ball.ShootDir),
		Scale:    req.Ball.Scale,
	}
	var court *game.Court
	if req.Court != nil {
		court = &game.Court{
			Width:     req.Court.Width,
			Height:    req.Court.Height,
			GoalWidth: req.Court.GoalWidth,
			GoalDepth: req.Court.GoalDepth,
		}
	}
	players := make([]game.Player, len(req.Players))
	for i, p := range req.Players {
		players[i] = game.Player{
			ID:       p.ID,
			Position: game.Vec2(p.Position),
			LinVel:   game.Vec2(p.LinVel),
			Movement: game.Vec2(p.Movement),
			Scale:    p.Scale,
		}
	}
	return ball, court, players
}

func fromGame(ball game.Ball, players []game.Player) protocol.Result {
	res := protocol.Result{
		Ball: protocol.Ball{
			Position: protocol.Vec(ball.Position),
			LinVel:   protocol.Vec(ball.LinVel),
			ShootDir: protocol.Vec(ball.ShootDir),
			Scale:    ball.Scale,
		},
		Players: make([]protocol.Player, len(players)),
	}
	for i, p := range players {
		res.Players[i] = protocol.Player{
			ID:       p.ID,
			Position: protocol.Vec(p.Position),
			LinVel:   protocol.Vec(p.LinVel),
			Movement: protocol.Vec(p.Movement),
			Scale:    p.Scale,
		}
	}
	return res
}

// RunStep decodes a wire step, runs it once and encodes the result.
func RunStep(s *game.Stepper, req protocol.Step) (protocol.Result, error) {
	ball, court, players := toGame(req)
	outBall, outPlayers, err := s.Step(ball, court, players)
	if err != nil {
		return protocol.Result{}, err
	}
	return fromGame(outBall, outPlayers), nil
}
