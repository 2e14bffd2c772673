package gcode

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"beltengine/pkg/cfg"
	"beltengine/pkg/logging"
)

// Compensator slows down and adjusts the flow of wall segments that lie on the
// belt. Those segments are printed at a slant against the moving belt and need
// a different speed and extrusion than the rest of the wall.
type Compensator struct {
	Enabled bool
	// Flow is the extrusion ratio applied to belt wall segments.
	Flow float64
	// Speed is the belt wall feedrate in mm/min.
	Speed float64
	// MinimumY is the height below which a segment lies on the belt.
	MinimumY float64
	Log      logging.Sink
}

// NewCompensator converts belt wall settings into a compensator: flow in
// percent, speed in mm/s and the first wall line width in mm.
func NewCompensator(enabled bool, flowPercent, speed, wallLineWidth float64) *Compensator {
	return &Compensator{
		Enabled:  enabled,
		Flow:     flowPercent / 100,
		Speed:    speed * 60,
		MinimumY: wallLineWidth * cfg.BeltWallMinimumYFactor,
	}
}

type known struct {
	v  float64
	ok bool
}

func set(v float64) known { return known{v: v, ok: true} }

// state is threaded forward through one pass over a program.
type state struct {
	layer    known
	y, lastY known
	e, lastE known
	f        known
	rewrites int
}

// Process returns the compensated program. With the compensator disabled the
// output equals the input.
func (c *Compensator) Process(lines []string) []string {
	out := make([]string, 0, len(lines))
	if !c.Enabled {
		return append(out, lines...)
	}

	st := &state{}
	for _, raw := range lines {
		out = append(out, c.step(st, raw)...)
	}
	logging.OrDiscard(c.Log).Debugf("Compensated %d belt wall moves", st.rewrites)
	return out
}

func (c *Compensator) step(st *state, raw string) []string {
	if n, ok := ParseLayer(raw); ok {
		st.layer = set(float64(n))
	}
	// the first layer is printed as sliced
	if !st.layer.ok || st.layer.v < 1 {
		return []string{raw}
	}

	line, ok := ParseLine(raw)
	if !ok {
		return []string{raw}
	}
	if v, ok := line.Values['Y']; ok {
		st.y = set(v)
	}
	if v, ok := line.Values['E']; ok {
		st.e = set(v)
	}
	if v, ok := line.Values['F']; ok {
		st.f = set(v)
	}

	out := []string{raw}
	if c.qualifies(st, line) {
		out = c.rewrite(st, line)
	}
	st.lastY = st.y
	st.lastE = st.e
	return out
}

func (c *Compensator) qualifies(st *state, line Line) bool {
	return line.Command != SetPosition &&
		line.HasAxis() && line.Has('E') &&
		st.f.ok &&
		st.y.ok && st.y.v <= c.MinimumY &&
		st.lastY.ok && st.lastY.v <= c.MinimumY
}

func (c *Compensator) rewrite(st *state, line Line) []string {
	slow := st.f.v > c.Speed
	adjust := c.Flow != 1.0 && st.lastE.ok
	if !slow && !adjust {
		return []string{line.Raw}
	}
	st.rewrites++

	if slow {
		line = line.without('F')
	}

	var out []string
	if adjust {
		e := st.lastE.v + (st.e.v-st.lastE.v)*c.Flow
		out = append(out,
			withComment(line.with('E', FormatE(e)))+" ; Adjusted E for belt wall",
			fmt.Sprintf("%s E%s ; Reset E to pre-compensated value", SetPosition, FormatE(st.e.v)),
		)
	} else {
		out = append(out, withComment(line))
	}

	if slow {
		out = append([]string{fmt.Sprintf("%s F%s ; Belt wall speed", line.Command, FormatF(c.Speed))}, out...)
		out = append(out, fmt.Sprintf("%s F%s ; Restored speed", line.Command, FormatF(st.f.v)))
	}
	return out
}

func withComment(l Line) string {
	if l.Comment == "" {
		return l.String()
	}
	return l.String() + " " + l.Comment
}

// ProcessFile compensates the program at path in place. A disabled compensator
// leaves the file alone.
func (c *Compensator) ProcessFile(path string) error {
	if !c.Enabled {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("motion program: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read motion program: %w", err)
	}

	text := string(data)
	newline := "\n"
	if strings.Contains(text, "\r\n") {
		newline = "\r\n"
		text = strings.ReplaceAll(text, "\r\n", "\n")
	}
	trailing := strings.HasSuffix(text, "\n")
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	if text == "" {
		lines = nil
	}

	out := strings.Join(c.Process(lines), newline)
	if trailing {
		out += newline
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to rewrite motion program: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(out); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to rewrite motion program: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to rewrite motion program: %w", err)
	}
	if err := os.Chmod(tmp.Name(), info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to rewrite motion program: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to rewrite motion program: %w", err)
	}
	return nil
}
