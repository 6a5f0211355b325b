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

// MergeDedup merges a packed persisted-timestamp stream src with a
// pre-constructed O3 index idx into dest, in ascending timestamp order.
// On a shared timestamp, "O3 wins, last one wins": every persisted row
// at that timestamp is replaced by the last O3 entry sharing it. dest
// must not alias src or idx and must be at least len(src)+len(idx)
// long.
//
// Every identifier dest synthesizes from a position in src carries the
// tag bit set (TagRowID); every identifier copied through
// from idx keeps whatever tag it arrived with (clear, for a
// pre-constructed O3 index).
//
// Returns the number of entries written to dest.
func MergeDedup(src []Timestamp, idx []Entry, dest []Entry) int {
	srcPos, idxPos, destPos := 0, 0, 0

	for srcPos < len(src) && idxPos < len(idx) {
		switch {
		case src[srcPos] < idx[idxPos].TS:
			dest[destPos] = Entry{TS: src[srcPos], ID: TagRowID(uint64(srcPos))}
			destPos++
			srcPos++
		case src[srcPos] > idx[idxPos].TS:
			dest[destPos] = idx[idxPos]
			destPos++
			idxPos++
		default:
			conflictTS := src[srcPos]
			for idxPos < len(idx) && idx[idxPos].TS == conflictTS {
				idxPos++
			}
			for srcPos < len(src) && src[srcPos] == conflictTS {
				dest[destPos] = idx[idxPos-1]
				destPos++
				srcPos++
			}
		}
	}

	if idxPos < len(idx) {
		destPos += copy(dest[destPos:], idx[idxPos:])
	} else {
		for ; srcPos < len(src); srcPos++ {
			dest[destPos] = Entry{TS: src[srcPos], ID: TagRowID(uint64(srcPos))}
			destPos++
		}
	}

	return destPos
}

// bitset is a reusable, caller-resizable flag buffer sized in bits. It
// exists so MergeDedupKeyed can track, within one conflict band, which
// O3 entries a persisted row has already claimed, without allocating
// per band.
type bitset []uint64

func (b bitset) test(i int) bool { return b[i/64]&(uint64(1)<<uint(i%64)) != 0 }
func (b bitset) set(i int)       { b[i/64] |= uint64(1) << uint(i%64) }

// resize returns b grown/truncated and zeroed to hold nbits bits,
// reusing b's backing array when it is already large enough.
func (b bitset) resize(nbits int) bitset {
	words := (nbits + 63) / 64
	if cap(b) >= words {
		b = b[:words]
	} else {
		b = make(bitset, words)
	}
	for i := range b {
		b[i] = 0
	}
	return b
}

// MergeDedupKeyed merges src with idx exactly like MergeDedup, except
// that equal-timestamp conflicts are resolved per row by comparing the
// dedup key (cmp) rather than unconditionally preferring O3: for each
// persisted row in a conflict band, the branch-free probe (probe.go)
// looks for an O3 entry in the band with an equal key. A match means O3
// wins for that row; no match means the persisted row survives
// untouched. O3 entries in the band that no persisted row claimed
// survive too, in their original order. dest must not alias src or idx
// and must be at least len(src)+len(idx) long.
//
// cmp must come from NewMergeComparator, not NewComparator: the left
// RowID it receives names a persisted-stream row position and the right
// RowID names an O3 index entry, independent of either's tag bit (see
// column.go). idx's entries keep the tag bit they arrive with
// (clear); only the ids this function synthesizes for unmatched
// persisted rows carry the tag bit set.
func MergeDedupKeyed(src []Timestamp, idx []Entry, dest []Entry, cmp Comparator) int {
	srcPos, idxPos, destPos := 0, 0, 0
	var used bitset

	for srcPos < len(src) && idxPos < len(idx) {
		switch {
		case src[srcPos] < idx[idxPos].TS:
			dest[destPos] = Entry{TS: src[srcPos], ID: TagRowID(uint64(srcPos))}
			destPos++
			srcPos++
		case src[srcPos] > idx[idxPos].TS:
			dest[destPos] = idx[idxPos]
			destPos++
			idxPos++
		default:
			conflictTS := src[srcPos]
			bandStart := idxPos
			for idxPos < len(idx) && idx[idxPos].TS == conflictTS {
				idxPos++
			}
			band := idx[bandStart:idxPos]
			used = used.resize(len(band))

			for srcPos < len(src) && src[srcPos] == conflictTS {
				// probe names a row position, not a buffer: cmp (a
				// NewMergeComparator) always reads its left argument
				// from ColumnData and its right argument from O3Data,
				// so probe's tag bit is irrelevant. TagRowID is used
				// only for the identifier actually written to dest.
				probe := PlainRowID(uint64(srcPos))
				if matched := branchFreeSearch(probe, band, cmp); matched >= 0 {
					used.set(matched)
					dest[destPos] = Entry{TS: conflictTS, ID: band[matched].ID}
				} else {
					dest[destPos] = Entry{TS: conflictTS, ID: TagRowID(uint64(srcPos))}
				}
				destPos++
				srcPos++
			}

			for i := range band {
				if !used.test(i) {
					dest[destPos] = band[i]
					destPos++
				}
			}
		}
	}

	if idxPos < len(idx) {
		destPos += copy(dest[destPos:], idx[idxPos:])
	} else {
		for ; srcPos < len(src); srcPos++ {
			dest[destPos] = Entry{TS: src[srcPos], ID: TagRowID(uint64(srcPos))}
			destPos++
		}
	}

	return destPos
}
