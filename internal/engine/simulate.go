// Package engine simulates typing a text on a keyboard layout and
// aggregates the resulting finger movement into cost metrics.
package engine

import "keylay/internal/layout"

// MovementEvent is one simulated keystroke.
type MovementEvent struct {
	Char     rune
	Finger   layout.Finger
	Hand     layout.Hand
	From     layout.Pos
	To       layout.Pos
	Distance float64
	// Alternated is true when the hand differs from the previous
	// event's hand. The first event counts as alternated.
	Alternated bool
}

// Trace is the ordered movement record of one simulation run.
// Characters the layout does not map produce no event; they are
// counted in Skipped so totals stay diagnosable.
type Trace struct {
	Events  []MovementEvent
	Skipped int
}

// Simulate types text on the layout and returns the movement trace.
// Processing is strictly sequential: each distance depends on where
// the previous events left the finger. Separate calls share no state
// and may run concurrently against the same layout.
func Simulate(lay *layout.Layout, text string) Trace {
	fingers := newFingerState(lay)
	var trace Trace
	var prevHand layout.Hand

	for _, r := range text {
		key, ok := lay.Lookup(r)
		if !ok {
			trace.Skipped++
			continue
		}
		hand := key.Finger.Hand()
		from := fingers.position(key.Finger)
		dist := fingers.advance(key.Finger, key.Pos)
		trace.Events = append(trace.Events, MovementEvent{
			Char:       r,
			Finger:     key.Finger,
			Hand:       hand,
			From:       from,
			To:         key.Pos,
			Distance:   dist,
			Alternated: len(trace.Events) == 0 || hand != prevHand,
		})
		prevHand = hand
	}
	return trace
}
