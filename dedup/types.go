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

// Timestamp is a row's 64-bit timestamp. Both merge inputs must be
// non-decreasing in Timestamp.
type Timestamp = uint64

// sideBit is bit 63 of a RowID, the origin tag. NewComparator reads a
// tagged id from O3Data and an untagged one from ColumnData; MergeDedup
// and MergeDedupKeyed set it on the ids they synthesize from persisted
// stream positions and leave O3 index ids as they arrive.
const sideBit = uint64(1) << 63

// RowID is a 64-bit row identifier. Bits 0-62 hold a row index; bit 63
// tags which side of a merge the index refers to. The meaning of "which
// side" depends on context (see column.go for the comparator's use of
// it, and mergedup.go for the two distinct conventions the merge itself
// juggles); RowID only carries the bit, callers and call sites decide
// what it means.
type RowID uint64

// Index returns the row position with the tag bit stripped.
func (r RowID) Index() uint64 { return uint64(r) &^ sideBit }

// Tagged reports whether bit 63 is set.
func (r RowID) Tagged() bool { return uint64(r)&sideBit != 0 }

// TagRowID returns a RowID for row index idx with bit 63 set.
func TagRowID(idx uint64) RowID { return RowID(idx | sideBit) }

// PlainRowID returns a RowID for row index idx with bit 63 clear.
func PlainRowID(idx uint64) RowID { return RowID(idx &^ sideBit) }

// Entry is the packed {timestamp, row id} pair that both merge inputs
// and the merge/dedup output streams are made of.
type Entry struct {
	TS Timestamp
	ID RowID
}
