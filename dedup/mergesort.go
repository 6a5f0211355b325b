// Copyright (C) 2023 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package dedup

import "golang.org/x/exp/constraints"

func minInt[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func maxInt[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

// cmpEntryKeyed orders two entries by timestamp first, then by key;
// keyCmp may be nil, in which case entries with equal timestamps
// compare equal (used when StableSortKeyed is asked to sort a no-key
// range, which never happens in this package but keeps the function
// usable standalone).
func cmpEntryKeyed(a, b Entry, keyCmp Comparator) int {
	if a.TS != b.TS {
		if a.TS < b.TS {
			return -1
		}
		return 1
	}
	if keyCmp == nil {
		return 0
	}
	return keyCmp(a.ID, b.ID)
}

// StableSortKeyed stably sorts src[start:end] by (timestamp, key) using
// a bottom-up merge sort, writing alternately into dest1 and dest2 and
// returning whichever of the two (or src, for a zero-length range) ends
// up holding the sorted result. All three slices must be indexable up
// to end; dest1 and dest2 must each be at least as long as src.
//
// Ties -- equal timestamp and equal key -- keep their relative input
// order: the left run's element wins a tied merge comparison.
func StableSortKeyed(src, dest1, dest2 []Entry, start, end int, keyCmp Comparator) []Entry {
	if end-start <= 0 {
		return src
	}

	destArr := [2][]Entry{dest2, dest1}
	source := src
	length := end - start
	sliceLen := 1
	cycle := 0

	for {
		dest := destArr[cycle%2]
		twice := sliceLen * 2
		for i := start; i < end; i += twice {
			len1 := minInt(sliceLen, end-i)
			len2 := maxInt(0, minInt(sliceLen, end-(i+sliceLen)))
			mergeEntryRuns(source, i, len1, i+sliceLen, len2, dest, i, keyCmp)
		}
		source = destArr[cycle%2]
		cycle++
		sliceLen = twice
		if sliceLen >= length {
			return source
		}
	}
}

// mergeEntryRuns merges the run [pos1, pos1+len1) with the run
// [pos2, pos2+len2) of source into dest starting at destPos.
func mergeEntryRuns(source []Entry, pos1, len1, pos2, len2 int, dest []Entry, destPos int, keyCmp Comparator) {
	var i1, i2 int
	for i1 < len1 && i2 < len2 {
		a := source[pos1+i1]
		b := source[pos2+i2]
		if cmpEntryKeyed(a, b, keyCmp) <= 0 {
			dest[destPos] = a
			i1++
		} else {
			dest[destPos] = b
			i2++
		}
		destPos++
	}
	if i1 < len1 {
		copy(dest[destPos:], source[pos1+i1:pos1+len1])
	} else {
		copy(dest[destPos:], source[pos2+i2:pos2+len2])
	}
}
