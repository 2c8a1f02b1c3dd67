// Package diff computes line-level differences between two versions of a document.
package diff

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Kind classifies a segment.
type Kind string

const (
	Added     Kind = "added"
	Removed   Kind = "removed"
	Unchanged Kind = "unchanged"
)

// Segment is a run of whole lines. Value keeps the line terminators.
type Segment struct {
	Kind  Kind   `json:"kind"`
	Value string `json:"value"`
}

// Result is the outcome of comparing two texts.
type Result struct {
	Segments       []Segment `json:"segments"`
	ChangedPortion string    `json:"changedPortion"`
}

// ErrTooManyLines is the cause of a ComputationError when the two texts hold more
// distinct lines than there are encodable runes.
var ErrTooManyLines = errors.New("too many distinct lines")

// ComputationError wraps an unexpected failure inside the diff engine.
type ComputationError struct {
	Cause any
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("diff computation failed: %v", e.Cause)
}

func (e *ComputationError) Unwrap() error {
	err, _ := e.Cause.(error)
	return err
}

// Compute diffs before against after and derives the changed portion.
func Compute(before, after string) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{}
			err = &ComputationError{Cause: r}
		}
	}()

	segments := Lines(before, after)
	return Result{
		Segments:       segments,
		ChangedPortion: ChangedPortion(segments),
	}, nil
}

// Lines returns the ordered segments turning before into after.
func Lines(before, after string) []Segment {
	a, b, lines := linesToRunes(before, after)

	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0
	diffs := dmp.DiffMainRunes(a, b, false)

	segments := make([]Segment, 0, len(diffs))
	for _, d := range diffs {
		var sb strings.Builder
		for _, r := range d.Text {
			sb.WriteString(lines[runeIndex(r)])
		}
		seg := Segment{Kind: kindOf(d.Type), Value: sb.String()}
		if seg.Value == "" {
			continue
		}
		// Merge neighbours of the same kind so callers see one run per change.
		if n := len(segments); n > 0 && segments[n-1].Kind == seg.Kind {
			segments[n-1].Value += seg.Value
			continue
		}
		segments = append(segments, seg)
	}
	return segments
}

// ChangedPortion joins the added lines without their terminators.
func ChangedPortion(segments []Segment) string {
	var added []string
	for _, s := range segments {
		if s.Kind != Added {
			continue
		}
		for _, line := range splitLines(s.Value) {
			added = append(added, strings.TrimSuffix(line, "\n"))
		}
	}
	return strings.Join(added, "\n")
}

// Apply rebuilds the after text from segments.
func Apply(segments []Segment) string {
	var sb strings.Builder
	for _, s := range segments {
		if s.Kind != Removed {
			sb.WriteString(s.Value)
		}
	}
	return sb.String()
}

// Revert rebuilds the before text from segments.
func Revert(segments []Segment) string {
	var sb strings.Builder
	for _, s := range segments {
		if s.Kind != Added {
			sb.WriteString(s.Value)
		}
	}
	return sb.String()
}

func kindOf(op diffmatchpatch.Operation) Kind {
	switch op {
	case diffmatchpatch.DiffInsert:
		return Added
	case diffmatchpatch.DiffDelete:
		return Removed
	default:
		return Unchanged
	}
}

// splitLines splits s after every newline. The last line may lack one.
func splitLines(s string) []string {
	parts := strings.SplitAfter(s, "\n")
	if len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

// linesToRunes encodes each distinct line as a single rune so the character
// diff operates on whole lines.
func linesToRunes(before, after string) ([]rune, []rune, []string) {
	var lines []string
	index := map[string]int{}

	encode := func(text string) []rune {
		parts := splitLines(text)
		runes := make([]rune, 0, len(parts))
		for _, line := range parts {
			i, ok := index[line]
			if !ok {
				i = len(lines)
				index[line] = i
				lines = append(lines, line)
			}
			runes = append(runes, indexRune(i))
		}
		return runes
	}

	a := encode(before)
	b := encode(after)
	return a, b, lines
}

// Surrogate code points are skipped: they cannot round trip through a Go string.
const (
	surrogateMin = 0xD800
	surrogateLen = 0x800

	// maxLines is the number of distinct lines a single comparison can encode.
	maxLines = unicode.MaxRune + 1 - surrogateLen
)

// indexRune panics with ErrTooManyLines past maxLines; Compute reports it as a ComputationError.
func indexRune(i int) rune {
	if i >= maxLines {
		panic(ErrTooManyLines)
	}
	if i < surrogateMin {
		return rune(i)
	}
	return rune(i + surrogateLen)
}

func runeIndex(r rune) int {
	if r < surrogateMin {
		return int(r)
	}
	return int(r) - surrogateLen
}
