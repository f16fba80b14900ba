package frames

import (
	"errors"
	"fmt"
	"sort"

	"github.com/samber/lo"
)

// ErrNoFramesSelected is returned when the day filter matches no frames
var ErrNoFramesSelected = errors.New("no frames selected")

// DayRange is an inclusive range of relative days; a single day has Start == End
type DayRange struct {
	Start int
	End   int
}

// SingleDay returns a range covering one day
func SingleDay(d int) DayRange {
	return DayRange{Start: d, End: d}
}

// String renders "[d]" or "[start, end]"
func (r DayRange) String() string {
	if r.Start == r.End {
		return fmt.Sprintf("[%d]", r.Start)
	}
	return fmt.Sprintf("[%d, %d]", r.Start, r.End)
}

// Days expands the range into concrete day numbers
func (r DayRange) Days() []int {
	if r.End < r.Start {
		return nil
	}
	return lo.RangeFrom(r.Start, r.End-r.Start+1)
}

// ParseDayRanges converts [[1], [3, 10]] style specs
func ParseDayRanges(specs [][]int) ([]DayRange, error) {
	ranges := make([]DayRange, 0, len(specs))
	for _, spec := range specs {
		switch len(spec) {
		case 1:
			ranges = append(ranges, SingleDay(spec[0]))
		case 2:
			if spec[1] < spec[0] {
				return nil, fmt.Errorf("invalid day range [%d, %d]", spec[0], spec[1])
			}
			ranges = append(ranges, DayRange{Start: spec[0], End: spec[1]})
		default:
			return nil, fmt.Errorf("day spec %v must have 1 or 2 entries", spec)
		}
	}
	return ranges, nil
}

// DaySummary describes one emitted day
type DaySummary struct {
	Day   int
	First string
	Last  string
	Count int
}

// Selection is the ordered frame list handed to the compositor
type Selection struct {
	Frames       []Frame
	Days         []DaySummary // one entry per emitted day occurrence
	DistinctDays int
}

// Total returns the number of selected frames
func (s *Selection) Total() int {
	return len(s.Frames)
}

// Select orders frames by spec order then ascending time within a day.
// Days without captures are skipped. A day matched by several specs is
// emitted once per match. allDays ignores specs and takes every day present
// in ascending order.
func Select(buckets Buckets, specs []DayRange, allDays bool) (*Selection, error) {
	if allDays {
		days := lo.Keys(map[int][]Frame(buckets))
		sort.Ints(days)
		specs = lo.Map(days, func(d int, _ int) DayRange { return SingleDay(d) })
	}

	sel := &Selection{}
	var emitted []int
	for _, spec := range specs {
		for _, d := range spec.Days() {
			frames, ok := buckets[d]
			if !ok || len(frames) == 0 {
				continue
			}
			sel.Frames = append(sel.Frames, frames...)
			sel.Days = append(sel.Days, DaySummary{
				Day:   d,
				First: frames[0].Name,
				Last:  frames[len(frames)-1].Name,
				Count: len(frames),
			})
			emitted = append(emitted, d)
		}
	}
	sel.DistinctDays = len(lo.Uniq(emitted))

	if len(sel.Frames) == 0 {
		return sel, ErrNoFramesSelected
	}
	return sel, nil
}
