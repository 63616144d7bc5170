package lyrics

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Line is one timed lyric line. Empty text marks a musical interlude.
type Line struct {
	Time float64 // seconds from track start
	Text string
}

// Document is a parsed lyric sheet, sorted ascending by time. Lines
// sharing a timestamp keep their input order, which is how paired
// translations stay adjacent.
type Document struct {
	Lines []Line
}

// Empty reports whether the document has no timed lines.
func (d Document) Empty() bool {
	return len(d.Lines) == 0
}

// timeTag matches one [mm:ss] or [mm:ss.fff] timestamp tag. The fraction
// carries one to three digits read as tenths, hundredths or thousandths.
var timeTag = regexp.MustCompile(`\[(\d+):(\d{1,2})(?:\.(\d{1,3}))?\]`)

// Parse extracts timed lines from LRC-style markup. A physical line may
// carry several timestamp tags, each yielding a Line with the tag-stripped
// text. Lines without any timestamp tag, metadata tags included, are
// dropped.
func Parse(raw string) Document {
	var lines []Line

	for _, physical := range strings.Split(raw, "\n") {
		physical = strings.TrimRight(physical, "\r")
		matches := timeTag.FindAllStringSubmatch(physical, -1)
		if len(matches) == 0 {
			continue
		}
		text := strings.TrimSpace(timeTag.ReplaceAllString(physical, ""))
		for _, m := range matches {
			ts, ok := tagSeconds(m[1], m[2], m[3])
			if !ok {
				continue
			}
			lines = append(lines, Line{Time: ts, Text: text})
		}
	}

	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].Time < lines[j].Time
	})
	return Document{Lines: lines}
}

func tagSeconds(minutes, seconds, fraction string) (float64, bool) {
	mins, err := strconv.Atoi(minutes)
	if err != nil {
		return 0, false
	}
	secs, err := strconv.Atoi(seconds)
	if err != nil {
		return 0, false
	}
	total := float64(mins*60 + secs)
	if fraction != "" {
		frac, err := strconv.Atoi(fraction)
		if err != nil {
			return 0, false
		}
		switch len(fraction) {
		case 1:
			total += float64(frac) / 10
		case 2:
			total += float64(frac) / 100
		case 3:
			total += float64(frac) / 1000
		}
	}
	return total, true
}

// ActiveLineIndex returns the index of the last line whose timestamp does
// not exceed the elapsed time, or -1 when playback has not reached the
// first line or the document is empty. It recomputes from scratch, so
// seeking backward is handled for free.
func (d Document) ActiveLineIndex(elapsedSeconds float64) int {
	idx := sort.Search(len(d.Lines), func(i int) bool {
		return d.Lines[i].Time > elapsedSeconds
	})
	return idx - 1
}
