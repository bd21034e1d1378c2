package engine

import "keylay/internal/layout"

// fingerState tracks the current position of every finger during one
// simulation run. State is private to a run and never reused.
type fingerState struct {
	pos map[layout.Finger]layout.Pos
}

func newFingerState(lay *layout.Layout) *fingerState {
	fs := &fingerState{pos: make(map[layout.Finger]layout.Pos)}
	for _, f := range lay.Fingers() {
		if home, ok := lay.Home(f); ok {
			fs.pos[f] = home
		}
	}
	return fs
}

func (fs *fingerState) position(f layout.Finger) layout.Pos {
	return fs.pos[f]
}

// advance moves one finger to target and returns the distance traveled.
// All other fingers stay where they are.
func (fs *fingerState) advance(f layout.Finger, target layout.Pos) float64 {
	dist := fs.pos[f].DistanceTo(target)
	fs.pos[f] = target
	return dist
}
