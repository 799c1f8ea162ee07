package ffmpeg

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Timing is the per-segment timing policy shared by the filter graph and the
// input declarations. Segments[i] is how long image i is shown (its -t), and
// consecutive segments overlap by Crossfade seconds.
type Timing struct {
	Segments   []float64
	Crossfade  float64
	Size       int
	Transition string
}

// Validate reports whether the timing can produce a graph.
func (t Timing) Validate() error {
	if len(t.Segments) < 2 {
		return errors.New("at least two segments are required")
	}
	if t.Crossfade <= 0 {
		return errors.New("crossfade must be positive")
	}
	if t.Size <= 0 {
		return errors.New("size must be positive")
	}
	if strings.TrimSpace(t.Transition) == "" {
		return errors.New("transition must be set")
	}
	for i, s := range t.Segments {
		if s <= t.Crossfade {
			return fmt.Errorf("segment %d (%gs) must be longer than the crossfade (%gs)", i, s, t.Crossfade)
		}
	}
	return nil
}

// Offsets returns the timeline position at which each transition starts.
// Transition k (between segment k and k+1) starts after all prior segments
// minus the crossfade already consumed by the k earlier blends and itself.
func (t Timing) Offsets() []float64 {
	if len(t.Segments) < 2 {
		return nil
	}
	offsets := make([]float64, 0, len(t.Segments)-1)
	var elapsed float64
	for k := 0; k < len(t.Segments)-1; k++ {
		elapsed += t.Segments[k]
		offsets = append(offsets, elapsed-float64(k+1)*t.Crossfade)
	}
	return offsets
}

// Total is the length of the blended timeline before -shortest truncation.
func (t Timing) Total() float64 {
	var sum float64
	for _, s := range t.Segments {
		sum += s
	}
	if n := len(t.Segments); n > 1 {
		sum -= float64(n-1) * t.Crossfade
	}
	return sum
}

// FinalLabel is the graph output that carries the blended video.
const FinalLabel = "v"

// BuildGraph returns the -filter_complex value for count looped image inputs
// (input indices 0..count-1). Every input is scaled to a Size square and
// converted to rgba so xfade can blend; the streams are then chained pairwise
// in input order. The result is a pure function of its arguments.
//
// With the default timing the output is:
//
//	[0:v]scale=1080:1080,format=rgba[v0];...;[v0123][v4]xfade=fade:1:44[v]
func BuildGraph(count int, t Timing) (string, error) {
	if count != len(t.Segments) {
		return "", fmt.Errorf("graph for %d inputs needs %d segments, got %d", count, count, len(t.Segments))
	}
	if err := t.Validate(); err != nil {
		return "", err
	}

	size := strconv.Itoa(t.Size)
	parts := make([]string, 0, 2*count-1)
	for i := 0; i < count; i++ {
		parts = append(parts, fmt.Sprintf("[%d:v]scale=%s:%s,format=rgba[v%d]", i, size, size, i))
	}

	offsets := t.Offsets()
	prev := "v0"
	for i := 1; i < count; i++ {
		out := prev + strconv.Itoa(i)
		if i == count-1 {
			out = FinalLabel
		}
		parts = append(parts, fmt.Sprintf("[%s][v%d]xfade=%s:%s:%s[%s]",
			prev, i, t.Transition, formatSeconds(t.Crossfade), formatSeconds(offsets[i-1]), out))
		prev = out
	}

	return strings.Join(parts, ";"), nil
}

// formatSeconds renders whole seconds without a fractional part ("12", not
// "12.000") and keeps the shortest exact form otherwise.
func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', -1, 64)
}
