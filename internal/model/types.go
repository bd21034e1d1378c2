// Package model defines shared data structures.
package model

import "time"

// Config defines settings for one analyzer invocation.
type Config struct {
	Layout        string
	Text          string
	File          string
	Compare       bool
	Parallel      bool
	Workers       int
	NoVisualize   bool
	MillisPerUnit float64
	PressMillis   int
}

// RunRecord captures a completed run for the history database.
type RunRecord struct {
	ID               int64
	At               time.Time
	Layout           string
	Mode             string // "simulate" or "compare"
	Source           string // "text" or the input file path
	Lines            int
	Chars            int
	Skipped          int
	Distance         float64
	AlternationRatio float64
	DurationMs       int64
	WPM              float64
	BestLine         string
}
