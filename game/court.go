package game

import "ballphys/physics"

// CourtChains builds the static walls of c: two side walls that stop at the
// goal openings, and one three-sided box behind each opening. All chains are
// open so the openings stay passable.
func CourtChains(c Court, restitution float64) []physics.Chain {
	hw := float64(c.Width) / 2
	hh := float64(c.Height) / 2
	gw := float64(c.GoalWidth) / 2
	d := float64(c.GoalDepth)

	top := []physics.Vec2{{-hw, gw}, {-hw, hh}, {hw, hh}, {hw, gw}}
	bottom := []physics.Vec2{{-hw, -gw}, {-hw, -hh}, {hw, -hh}, {hw, -gw}}
	left := []physics.Vec2{{-hw, gw}, {-hw - d, gw}, {-hw - d, -gw}, {-hw, -gw}}
	right := []physics.Vec2{{hw, gw}, {hw + d, gw}, {hw + d, -gw}, {hw, -gw}}

	chains := make([]physics.Chain, 0, 4)
	for _, verts := range [][]physics.Vec2{top, bottom, left, right} {
		verts = compactChain(verts)
		if len(verts) < 2 {
			continue
		}
		chains = append(chains, physics.Chain{Vertices: verts, Restitution: restitution})
	}
	return chains
}

// minSegment is the shortest wall segment kept. A zero goal depth or a goal
// as wide as the court would otherwise produce zero-length segments, which
// engines reject.
const minSegment = 0.01

func compactChain(verts []physics.Vec2) []physics.Vec2 {
	out := verts[:1]
	for _, v := range verts[1:] {
		if v.Sub(out[len(out)-1]).Len() < minSegment {
			continue
		}
		out = append(out, v)
	}
	return out
}
