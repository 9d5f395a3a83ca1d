package protocol

type Result struct {
	Ball    Ball     `json:"ball" msgpack:"ball"`
	Players []Player `json:"players" msgpack:"players"`
}

type Opened struct {
	Session string `json:"session" msgpack:"session"`
}

type Closed struct {
	Session string `json:"session" msgpack:"session"`
}

type SessionInfo struct {
	Session string `json:"session" msgpack:"session"`
	Steps   int    `json:"steps" msgpack:"steps"`
}

type Sessions struct {
	Sessions []SessionInfo `json:"sessions" msgpack:"sessions"`
}

type Error struct {
	Message string `json:"message" msgpack:"message"`
}
