// Package gcode rewrites motion programs produced by the slicing engine.
package gcode

import (
	"regexp"
	"strconv"
	"strings"
)

// Supported commands. Anything else passes through untouched.
const (
	Rapid       = "G0"
	Linear      = "G1"
	SetPosition = "G92"
)

var layerMarker = regexp.MustCompile(`^;LAYER:(-?\d+)\s*$`)

// ParseLayer returns the layer index of a ";LAYER:<n>" marker line.
func ParseLayer(raw string) (int, bool) {
	m := layerMarker.FindStringSubmatch(raw)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Line is a parsed G0, G1 or G92 command.
type Line struct {
	Raw     string
	Command string
	// Words are the code tokens after the command, verbatim.
	Words []string
	// Comment is everything from the first ';', or empty.
	Comment string
	// Values holds the recognised X, Y, Z, E and F parameters.
	Values map[byte]float64
}

// ParseLine parses a supported motion command. It returns false for any other
// line and for commands without a recognised parameter.
func ParseLine(raw string) (Line, bool) {
	code, comment := raw, ""
	if i := strings.IndexByte(raw, ';'); i >= 0 {
		code, comment = raw[:i], raw[i:]
	}

	fields := strings.Fields(code)
	if len(fields) == 0 {
		return Line{}, false
	}
	switch fields[0] {
	case Rapid, Linear, SetPosition:
	default:
		return Line{}, false
	}

	l := Line{
		Raw:     raw,
		Command: fields[0],
		Words:   fields[1:],
		Comment: strings.TrimRight(comment, "\r\n"),
		Values:  make(map[byte]float64),
	}
	for _, w := range l.Words {
		if letter, v, ok := parseWord(w); ok {
			l.Values[letter] = v
		}
	}
	if len(l.Values) == 0 {
		return Line{}, false
	}
	return l, true
}

func parseWord(w string) (byte, float64, bool) {
	if len(w) < 2 {
		return 0, 0, false
	}
	switch w[0] {
	case 'X', 'Y', 'Z', 'E', 'F':
	default:
		return 0, 0, false
	}
	v, err := strconv.ParseFloat(w[1:], 64)
	if err != nil {
		return 0, 0, false
	}
	return w[0], v, true
}

// HasAxis reports whether the line moves X, Y or Z.
func (l Line) HasAxis() bool {
	for _, a := range []byte{'X', 'Y', 'Z'} {
		if _, ok := l.Values[a]; ok {
			return true
		}
	}
	return false
}

func (l Line) Has(letter byte) bool {
	_, ok := l.Values[letter]
	return ok
}

// String renders the command and its words, without the comment.
func (l Line) String() string {
	return strings.Join(append([]string{l.Command}, l.Words...), " ")
}

// without returns a copy of the line with every word for letter removed.
func (l Line) without(letter byte) Line {
	out := l
	out.Words = nil
	for _, w := range l.Words {
		if len(w) > 0 && w[0] == letter {
			if _, _, ok := parseWord(w); ok {
				continue
			}
		}
		out.Words = append(out.Words, w)
	}
	return out
}

// with returns a copy of the line with the word for letter replaced by text.
func (l Line) with(letter byte, text string) Line {
	out := l
	out.Words = make([]string, len(l.Words))
	for i, w := range l.Words {
		if len(w) > 0 && w[0] == letter {
			if _, _, ok := parseWord(w); ok {
				w = string(letter) + text
			}
		}
		out.Words[i] = w
	}
	return out
}

// FormatE prints an extruder position with trailing zeros trimmed but at
// least one decimal: 2.5, 5.0.
func FormatE(v float64) string {
	s := strings.TrimRight(strconv.FormatFloat(v, 'f', 5, 64), "0")
	if strings.HasSuffix(s, ".") {
		s += "0"
	}
	if s == "-0.0" {
		s = "0.0"
	}
	return s
}

// FormatF prints a feedrate, without a fraction when it is integral.
func FormatF(v float64) string {
	s := strings.TrimRight(strconv.FormatFloat(v, 'f', 3, 64), "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		s = "0"
	}
	return s
}
