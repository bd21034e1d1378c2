// Package playback animates a simulated trace over the keyboard in
// the terminal.
package playback

import (
	"time"

	"keylay/internal/engine"
	"keylay/internal/layout"
)

type keyframe struct {
	at  time.Duration
	pos layout.Pos
}

type press struct {
	start time.Duration
	end   time.Duration
	pos   layout.Pos
}

// timeline holds per-finger keyframe tracks for one trace. Fingers move
// one after another, the way the summary duration is modeled, so the
// animation clock matches the reported estimate plus key dwell.
type timeline struct {
	tracks  map[layout.Finger][]keyframe
	presses []press
	eventAt []time.Duration
	total   time.Duration
}

func buildTimeline(lay *layout.Layout, trace engine.Trace, speed engine.SpeedModel) timeline {
	tl := timeline{tracks: make(map[layout.Finger][]keyframe)}
	for _, f := range lay.Fingers() {
		if home, ok := lay.Home(f); ok {
			tl.tracks[f] = []keyframe{{at: 0, pos: home}}
		}
	}

	clock := time.Duration(0)
	for _, ev := range trace.Events {
		moveDur := time.Duration(ev.Distance*speed.MillisPerUnit) * time.Millisecond
		arrive := clock + moveDur
		release := arrive + time.Duration(speed.PressMillis)*time.Millisecond

		track := tl.tracks[ev.Finger]
		if last := track[len(track)-1]; last.at < clock {
			// Hold position until this move starts.
			track = append(track, keyframe{at: clock, pos: last.pos})
		}
		track = append(track, keyframe{at: arrive, pos: ev.To})
		tl.tracks[ev.Finger] = track

		tl.presses = append(tl.presses, press{start: arrive, end: release, pos: ev.To})
		tl.eventAt = append(tl.eventAt, arrive)
		clock = release
	}
	tl.total = clock
	return tl
}

// positionAt returns the interpolated position of a finger at the
// given playback time.
func (tl timeline) positionAt(f layout.Finger, at time.Duration) layout.Pos {
	track := tl.tracks[f]
	if len(track) == 0 {
		return layout.Pos{}
	}
	if at <= track[0].at {
		return track[0].pos
	}
	for i := 1; i < len(track); i++ {
		if at >= track[i].at {
			continue
		}
		prev, next := track[i-1], track[i]
		span := next.at - prev.at
		if span <= 0 {
			return next.pos
		}
		frac := float64(at-prev.at) / float64(span)
		return layout.Pos{
			X: prev.pos.X + (next.pos.X-prev.pos.X)*frac,
			Y: prev.pos.Y + (next.pos.Y-prev.pos.Y)*frac,
		}
	}
	return track[len(track)-1].pos
}

// pressedAt returns the key position being pressed at the given time.
func (tl timeline) pressedAt(at time.Duration) (layout.Pos, bool) {
	for _, p := range tl.presses {
		if at >= p.start && at < p.end {
			return p.pos, true
		}
		if p.start > at {
			break
		}
	}
	return layout.Pos{}, false
}

// typedCount returns how many events have been pressed by the given time.
func (tl timeline) typedCount(at time.Duration) int {
	n := 0
	for _, t := range tl.eventAt {
		if t > at {
			break
		}
		n++
	}
	return n
}
