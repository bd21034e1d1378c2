// Package layout loads keyboard layout definitions and resolves
// characters to keys.
package layout

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
)

// ErrNotFound reports that no layout with the requested name exists.
var ErrNotFound = errors.New("layout not found")

// ErrFormat reports a malformed layout definition.
var ErrFormat = errors.New("invalid layout format")

// Finger identifies one of the ten fingers, ordered left pinky to
// right pinky as in the layout file format.
type Finger int

// Finger values.
const (
	LeftPinky Finger = iota
	LeftRing
	LeftMiddle
	LeftIndex
	LeftThumb
	RightThumb
	RightIndex
	RightMiddle
	RightRing
	RightPinky

	fingerCount = 10
)

var fingerNames = [fingerCount]string{
	"left-pinky", "left-ring", "left-middle", "left-index", "left-thumb",
	"right-thumb", "right-index", "right-middle", "right-ring", "right-pinky",
}

// String returns the layout-file spelling of the finger.
func (f Finger) String() string {
	if f < 0 || f >= fingerCount {
		return fmt.Sprintf("finger(%d)", int(f))
	}
	return fingerNames[f]
}

// Hand identifies which hand a finger belongs to.
type Hand int

// Hand values.
const (
	LeftHand Hand = iota
	RightHand
)

// String returns "left" or "right".
func (h Hand) String() string {
	if h == LeftHand {
		return "left"
	}
	return "right"
}

// Hand returns the hand the finger belongs to.
func (f Finger) Hand() Hand {
	if f <= LeftThumb {
		return LeftHand
	}
	return RightHand
}

// ParseFinger parses a finger name from a layout file.
func ParseFinger(name string) (Finger, error) {
	for i, n := range fingerNames {
		if n == name {
			return Finger(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown finger %q", ErrFormat, name)
}

// Pos is a position on the abstract key grid, in key units.
type Pos struct {
	X float64
	Y float64
}

// DistanceTo returns the Euclidean distance to other, in key units.
func (p Pos) DistanceTo(other Pos) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Key is one physical key of a layout.
type Key struct {
	Char    rune // unshifted character, lowercased
	Shifted rune // shifted character, 0 when none declared
	Finger  Finger
	Pos     Pos
	Width   float64 // in key units, for rendering
	Home    bool
}

// Layout is an immutable keyboard layout. It is safe to share across
// concurrent simulation runs.
type Layout struct {
	Name string
	Keys []Key

	byChar  map[rune]int
	homes   map[Finger]Pos
	fingers []Finger
}

// Lookup resolves a character to its key. The second return value is
// false for characters the layout does not map; that outcome is an
// expected policy case for callers, not an error.
func (l *Layout) Lookup(r rune) (Key, bool) {
	if idx, ok := l.byChar[r]; ok {
		return l.Keys[idx], true
	}
	if idx, ok := l.byChar[unicode.ToLower(r)]; ok {
		return l.Keys[idx], true
	}
	return Key{}, false
}

// Home returns the home position of the given finger. The second
// return value is false for fingers the layout never references.
func (l *Layout) Home(f Finger) (Pos, bool) {
	pos, ok := l.homes[f]
	return pos, ok
}

// Fingers returns the fingers referenced by the layout, in enumeration order.
func (l *Layout) Fingers() []Finger {
	out := make([]Finger, len(l.fingers))
	copy(out, l.fingers)
	return out
}

type layoutFile struct {
	Name string     `toml:"name"`
	Keys []keyEntry `toml:"keys"`
}

type keyEntry struct {
	Char    string   `toml:"char"`
	Shifted string   `toml:"shifted"`
	Finger  string   `toml:"finger"`
	X       *float64 `toml:"x"`
	Y       *float64 `toml:"y"`
	Width   *float64 `toml:"width"`
	Home    bool     `toml:"home"`
}

// Parse decodes and validates a TOML layout definition.
func Parse(data []byte) (*Layout, error) {
	var file layoutFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return build(file)
}

// ParseFile decodes and validates a TOML layout file.
func ParseFile(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read layout: %w", err)
	}
	lay, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lay, nil
}

// Load resolves a layout by name: builtin layouts first, then
// <dir>/<name>.toml. A name containing a path separator or a .toml
// suffix is treated as a direct file path.
func Load(name, dir string) (*Layout, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty layout name", ErrNotFound)
	}
	if strings.ContainsRune(name, os.PathSeparator) || strings.HasSuffix(name, ".toml") {
		return ParseFile(name)
	}
	if data, ok := builtin(name); ok {
		lay, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("builtin layout %s: %w", name, err)
		}
		return lay, nil
	}
	if dir != "" {
		path := filepath.Join(dir, name+".toml")
		if _, err := os.Stat(path); err == nil {
			return ParseFile(path)
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat layout: %w", err)
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
}

func build(file layoutFile) (*Layout, error) {
	if strings.TrimSpace(file.Name) == "" {
		return nil, fmt.Errorf("%w: missing layout name", ErrFormat)
	}
	if len(file.Keys) == 0 {
		return nil, fmt.Errorf("%w: layout has no keys", ErrFormat)
	}

	lay := &Layout{
		Name:   file.Name,
		Keys:   make([]Key, 0, len(file.Keys)),
		byChar: make(map[rune]int, len(file.Keys)*2),
		homes:  make(map[Finger]Pos, fingerCount),
	}
	referenced := map[Finger]bool{}

	for i, entry := range file.Keys {
		char, err := singleRune(entry.Char)
		if err != nil {
			return nil, fmt.Errorf("%w: key %d: %v", ErrFormat, i, err)
		}
		char = unicode.ToLower(char)
		finger, err := ParseFinger(entry.Finger)
		if err != nil {
			return nil, fmt.Errorf("key %d (%q): %w", i, string(char), err)
		}
		if entry.X == nil || entry.Y == nil {
			return nil, fmt.Errorf("%w: key %q is missing a position", ErrFormat, string(char))
		}
		width := 1.0
		if entry.Width != nil {
			if *entry.Width <= 0 {
				return nil, fmt.Errorf("%w: key %q has non-positive width", ErrFormat, string(char))
			}
			width = *entry.Width
		}

		key := Key{
			Char:   char,
			Finger: finger,
			Pos:    Pos{X: *entry.X, Y: *entry.Y},
			Width:  width,
			Home:   entry.Home,
		}
		if entry.Shifted != "" {
			shifted, err := singleRune(entry.Shifted)
			if err != nil {
				return nil, fmt.Errorf("%w: key %q: shifted: %v", ErrFormat, string(char), err)
			}
			key.Shifted = shifted
		}

		idx := len(lay.Keys)
		if _, dup := lay.byChar[key.Char]; dup {
			return nil, fmt.Errorf("%w: duplicate key %q", ErrFormat, string(key.Char))
		}
		lay.byChar[key.Char] = idx
		if key.Shifted != 0 {
			if _, dup := lay.byChar[key.Shifted]; dup {
				return nil, fmt.Errorf("%w: duplicate key %q", ErrFormat, string(key.Shifted))
			}
			lay.byChar[key.Shifted] = idx
		}
		if key.Home {
			if _, dup := lay.homes[finger]; dup {
				return nil, fmt.Errorf("%w: finger %s has two home keys", ErrFormat, finger)
			}
			lay.homes[finger] = key.Pos
		}
		referenced[finger] = true
		lay.Keys = append(lay.Keys, key)
	}

	for f := Finger(0); f < fingerCount; f++ {
		if !referenced[f] {
			continue
		}
		if _, ok := lay.homes[f]; !ok {
			return nil, fmt.Errorf("%w: finger %s has no home key", ErrFormat, f)
		}
		lay.fingers = append(lay.fingers, f)
	}
	return lay, nil
}

func singleRune(s string) (rune, error) {
	r, size := utf8.DecodeRuneInString(s)
	if s == "" || r == utf8.RuneError || size != len(s) {
		return 0, fmt.Errorf("expected a single character, got %q", s)
	}
	return r, nil
}
