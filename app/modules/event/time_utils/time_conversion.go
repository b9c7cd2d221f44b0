package eventtime

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// ErrUnrecognizedTime is returned when an input matches no known format.
var ErrUnrecognizedTime = errors.New("unrecognized time")

// layouts are tried in order before natural-language parsing. Layouts
// without a zone are read in the club's location.
var layouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

var compactClock = regexp.MustCompile(`\b(\d{1,2})(\d{2})(am|pm)\b`)

// TimeParser reads calendar bounds typed by members: timestamps, dates or
// phrases like "next friday" and "tomorrow 7pm".
type TimeParser struct {
	w *when.Parser
}

// NewTimeParser creates a TimeParser with the English and common rules.
func NewTimeParser() *TimeParser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &TimeParser{w: w}
}

// Parse resolves input in loc. Relative phrases are anchored at now.
func (tp *TimeParser) Parse(input string, loc *time.Location, now time.Time) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, fmt.Errorf("%w: empty input", ErrUnrecognizedTime)
	}

	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, input, loc); err == nil {
			return t, nil
		}
	}

	// "932am" reads as "9:32 am"
	normalized := compactClock.ReplaceAllString(strings.ToLower(input), "$1:$2 $3")

	r, err := tp.w.Parse(normalized, now.In(loc))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrUnrecognizedTime, input, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnrecognizedTime, input)
	}
	return r.Time.In(loc), nil
}
