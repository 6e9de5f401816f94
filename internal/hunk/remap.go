package hunk

import "sort"

// MapLine translates a line number through changes computed against the
// coordinates the line is expressed in. Lines inside a replaced region are
// clamped into the replacement.
func MapLine(line int, changes []Hunk) int {
	delta := 0
	for _, c := range sortedByOld(changes) {
		if c.OldCount == 0 {
			if line >= c.OldStart {
				delta += c.NewCount
				continue
			}
			break
		}
		oldEnd := c.OldStart + c.OldCount - 1
		switch {
		case line > oldEnd:
			delta += c.Delta()
		case line >= c.OldStart:
			offset := line - c.OldStart
			if c.NewCount == 0 {
				return max(c.NewStart, 1)
			}
			return c.NewStart + min(offset, c.NewCount-1)
		default:
			return line + delta
		}
	}
	return line + delta
}

// MapRange translates a range through changes. Empty ranges stay empty.
func MapRange(r LineRange, changes []Hunk) LineRange {
	if len(changes) == 0 {
		return r
	}
	if r.IsEmpty() {
		start := MapLine(r.Start, changes)
		return LineRange{Start: start, End: start - 1}
	}
	start := MapLine(r.Start, changes)
	end := MapLine(r.End, changes)
	if end < start {
		end = start
	}
	return LineRange{Start: start, End: end}
}

func sortedByOld(changes []Hunk) []Hunk {
	if sort.SliceIsSorted(changes, func(i, j int) bool { return changes[i].OldStart < changes[j].OldStart }) {
		return changes
	}
	sorted := append([]Hunk(nil), changes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].OldStart < sorted[j].OldStart })
	return sorted
}
