package protocol

// Payloads coming in from the host.

type Vec [2]float32

type Ball struct {
	Position Vec     `json:"position" msgpack:"position"`
	LinVel   Vec     `json:"lin_vel" msgpack:"lin_vel"`
	ShootDir Vec     `json:"shoot_dir" msgpack:"shoot_dir"`
	Scale    float32 `json:"scale,omitempty" msgpack:"scale,omitempty"` // optional when radii are fixed
}

type Player struct {
	ID       int32   `json:"id" msgpack:"id"`
	Position Vec     `json:"position" msgpack:"position"`
	LinVel   Vec     `json:"lin_vel" msgpack:"lin_vel"`
	Movement Vec     `json:"movement" msgpack:"movement"`
	Scale    float32 `json:"scale,omitempty" msgpack:"scale,omitempty"`
}

type Court struct {
	Width     float32 `json:"width" msgpack:"width"`
	Height    float32 `json:"height" msgpack:"height"`
	GoalWidth float32 `json:"goal_width" msgpack:"goal_width"`
	GoalDepth float32 `json:"goal_depth" msgpack:"goal_depth"`
}

type Step struct {
	Session string   `json:"session,omitempty" msgpack:"session,omitempty"` // empty runs outside any lane
	Ball    Ball     `json:"ball" msgpack:"ball"`
	Court   *Court   `json:"court,omitempty" msgpack:"court,omitempty"`
	Players []Player `json:"players" msgpack:"players"`
}

type Close struct {
	Session string `json:"session" msgpack:"session"`
}

// Empty is the payload of open, list and ping.
type Empty struct{}
