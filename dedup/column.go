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

import "unsafe"

// KeyWidth is the byte width of one fixed-width dedup key column.
type KeyWidth int32

const (
	Width1  KeyWidth = 1
	Width2  KeyWidth = 2
	Width4  KeyWidth = 4
	Width8  KeyWidth = 8
	Width16 KeyWidth = 16
	Width32 KeyWidth = 32
)

// KeyColumn describes one column participating in dedup key comparison.
// It is the Go analogue of the engine's packed dedup_column descriptor:
// a fixed-width type, the row at which the persisted side was first
// materialized, the two backing buffers, and a null sentinel.
//
// ColumnData and O3Data are borrowed for the duration of a single call;
// KeyColumn never allocates and never outlives the call it is passed
// to.
type KeyColumn struct {
	Width KeyWidth

	// ColumnTop is the row index at which the persisted column was
	// first materialized. Rows strictly below ColumnTop read as
	// NullValue.
	ColumnTop int64

	// ColumnData is the persisted side's backing store, dense starting
	// at row ColumnTop: ColumnData[0] holds the value for row
	// ColumnTop, ColumnData[1] for row ColumnTop+1, and so on.
	ColumnData unsafe.Pointer

	// O3Data is the O3 batch's backing store, dense from row 0.
	O3Data unsafe.Pointer

	// NullValue holds the column's null sentinel, little-endian, in
	// its low Width bytes.
	NullValue [32]byte
}

// Comparator orders two row identifiers by one or more key columns. It
// returns a negative number if l sorts before r, zero if they compare
// equal under every key column, and a positive number otherwise.
type Comparator func(l, r RowID) int

type widthCompareFunc func(col *KeyColumn, l, r RowID) int

// columnElementIntN reads the persisted side (ColumnData) at row idx,
// honoring ColumnTop: rows below it read as the column's null sentinel.
// o3ElementIntN reads the O3 side (O3Data) at row idx unconditionally --
// the O3 batch has no column_top, it is dense from row 0.

func columnElementInt8(col *KeyColumn, idx int64) int8 {
	if idx < col.ColumnTop {
		return nullInt8(&col.NullValue)
	}
	return readInt8(col.ColumnData, idx-col.ColumnTop)
}

func o3ElementInt8(col *KeyColumn, idx int64) int8 { return readInt8(col.O3Data, idx) }

func columnElementInt16(col *KeyColumn, idx int64) int16 {
	if idx < col.ColumnTop {
		return nullInt16(&col.NullValue)
	}
	return readInt16(col.ColumnData, idx-col.ColumnTop)
}

func o3ElementInt16(col *KeyColumn, idx int64) int16 { return readInt16(col.O3Data, idx) }

func columnElementInt32(col *KeyColumn, idx int64) int32 {
	if idx < col.ColumnTop {
		return nullInt32(&col.NullValue)
	}
	return readInt32(col.ColumnData, idx-col.ColumnTop)
}

func o3ElementInt32(col *KeyColumn, idx int64) int32 { return readInt32(col.O3Data, idx) }

func columnElementInt64(col *KeyColumn, idx int64) int64 {
	if idx < col.ColumnTop {
		return nullInt64(&col.NullValue)
	}
	return readInt64(col.ColumnData, idx-col.ColumnTop)
}

func o3ElementInt64(col *KeyColumn, idx int64) int64 { return readInt64(col.O3Data, idx) }

func columnElementInt128(col *KeyColumn, idx int64) int128 {
	if idx < col.ColumnTop {
		return nullInt128(&col.NullValue)
	}
	return readInt128(col.ColumnData, idx-col.ColumnTop)
}

func o3ElementInt128(col *KeyColumn, idx int64) int128 { return readInt128(col.O3Data, idx) }

func columnElementInt256(col *KeyColumn, idx int64) int256 {
	if idx < col.ColumnTop {
		return nullInt256(&col.NullValue)
	}
	return readInt256(col.ColumnData, idx-col.ColumnTop)
}

func o3ElementInt256(col *KeyColumn, idx int64) int256 { return readInt256(col.O3Data, idx) }

// elementIntN reads id's key value from whichever buffer its tag bit
// names: this is the general row-identifier convention, used
// when both sides of a comparison live in the same row-identifier space
// (the single-stream dedup path, where every id is untagged and always
// reads ColumnData). The merge-dedup path does NOT use these -- see
// mergeCompareWidthN and NewMergeComparator below, which read
// ColumnData/O3Data positionally instead.

func elementInt8(col *KeyColumn, id RowID) int8 {
	if id.Tagged() {
		return o3ElementInt8(col, int64(id.Index()))
	}
	return columnElementInt8(col, int64(id.Index()))
}

func elementInt16(col *KeyColumn, id RowID) int16 {
	if id.Tagged() {
		return o3ElementInt16(col, int64(id.Index()))
	}
	return columnElementInt16(col, int64(id.Index()))
}

func elementInt32(col *KeyColumn, id RowID) int32 {
	if id.Tagged() {
		return o3ElementInt32(col, int64(id.Index()))
	}
	return columnElementInt32(col, int64(id.Index()))
}

func elementInt64(col *KeyColumn, id RowID) int64 {
	if id.Tagged() {
		return o3ElementInt64(col, int64(id.Index()))
	}
	return columnElementInt64(col, int64(id.Index()))
}

func elementInt128(col *KeyColumn, id RowID) int128 {
	if id.Tagged() {
		return o3ElementInt128(col, int64(id.Index()))
	}
	return columnElementInt128(col, int64(id.Index()))
}

func elementInt256(col *KeyColumn, id RowID) int256 {
	if id.Tagged() {
		return o3ElementInt256(col, int64(id.Index()))
	}
	return columnElementInt256(col, int64(id.Index()))
}

// The six width-specialized compares below are the "mono-width" path:
// each is a free function with no inner switch, so a single-key
// Comparator (the common case) dispatches once, in NewComparator, and
// never again inside the hot merge/dedup loop.

func compareWidth1(col *KeyColumn, l, r RowID) int {
	a, b := elementInt8(col, l), elementInt8(col, r)
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}

func compareWidth2(col *KeyColumn, l, r RowID) int {
	a, b := elementInt16(col, l), elementInt16(col, r)
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}

func compareWidth4(col *KeyColumn, l, r RowID) int {
	a, b := elementInt32(col, l), elementInt32(col, r)
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}

func compareWidth8(col *KeyColumn, l, r RowID) int {
	a, b := elementInt64(col, l), elementInt64(col, r)
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}

func compareWidth16(col *KeyColumn, l, r RowID) int {
	return cmpInt128(elementInt128(col, l), elementInt128(col, r))
}

func compareWidth32(col *KeyColumn, l, r RowID) int {
	return cmpInt256(elementInt256(col, l), elementInt256(col, r))
}

func widthCompare(w KeyWidth) (widthCompareFunc, error) {
	switch w {
	case Width1:
		return compareWidth1, nil
	case Width2:
		return compareWidth2, nil
	case Width4:
		return compareWidth4, nil
	case Width8:
		return compareWidth8, nil
	case Width16:
		return compareWidth16, nil
	case Width32:
		return compareWidth32, nil
	default:
		return nil, ErrUnsupportedWidth
	}
}

// NewComparator builds a Comparator over the given key columns, in
// order: the first column that differs between two rows decides the
// result.
//
// When len(cols) == 1, NewComparator returns a comparator specialized
// to that one column's width with no per-call width dispatch -- the
// common single-column case. For more than one
// column it returns a comparator that loops over the columns and
// returns on the first non-zero diff.
func NewComparator(cols []KeyColumn) (Comparator, error) {
	if len(cols) == 0 {
		return nil, ErrNoKeyColumns
	}
	if len(cols) == 1 {
		col := cols[0]
		cmp, err := widthCompare(col.Width)
		if err != nil {
			return nil, err
		}
		return func(l, r RowID) int { return cmp(&col, l, r) }, nil
	}

	fns := make([]widthCompareFunc, len(cols))
	owned := make([]KeyColumn, len(cols))
	copy(owned, cols)
	for i := range owned {
		fn, err := widthCompare(owned[i].Width)
		if err != nil {
			return nil, err
		}
		fns[i] = fn
	}
	return func(l, r RowID) int {
		for i := range owned {
			if diff := fns[i](&owned[i], l, r); diff != 0 {
				return diff
			}
		}
		return 0
	}, nil
}

// mergeWidthCompareFunc compares a persisted row (read from ColumnData,
// by plain row position) against an O3 row (read from O3Data, by plain
// row position) -- positionally, by argument order, not by either
// RowID's tag bit. This is the shape merge-dedup needs: the tag bit on a
// pre-constructed O3 index entry is clear, the same as a
// persisted row's, so the general tag-dispatching element readers above
// would send both sides into ColumnData. mergeWidthCompareFunc exists so
// the merge path never has to rely on the tag bit meaning "which
// buffer".
type mergeWidthCompareFunc func(col *KeyColumn, srcPos, o3Pos int64) int

func mergeCompareWidth1(col *KeyColumn, srcPos, o3Pos int64) int {
	a, b := columnElementInt8(col, srcPos), o3ElementInt8(col, o3Pos)
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}

func mergeCompareWidth2(col *KeyColumn, srcPos, o3Pos int64) int {
	a, b := columnElementInt16(col, srcPos), o3ElementInt16(col, o3Pos)
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}

func mergeCompareWidth4(col *KeyColumn, srcPos, o3Pos int64) int {
	a, b := columnElementInt32(col, srcPos), o3ElementInt32(col, o3Pos)
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}

func mergeCompareWidth8(col *KeyColumn, srcPos, o3Pos int64) int {
	a, b := columnElementInt64(col, srcPos), o3ElementInt64(col, o3Pos)
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}

func mergeCompareWidth16(col *KeyColumn, srcPos, o3Pos int64) int {
	return cmpInt128(columnElementInt128(col, srcPos), o3ElementInt128(col, o3Pos))
}

func mergeCompareWidth32(col *KeyColumn, srcPos, o3Pos int64) int {
	return cmpInt256(columnElementInt256(col, srcPos), o3ElementInt256(col, o3Pos))
}

func mergeWidthCompare(w KeyWidth) (mergeWidthCompareFunc, error) {
	switch w {
	case Width1:
		return mergeCompareWidth1, nil
	case Width2:
		return mergeCompareWidth2, nil
	case Width4:
		return mergeCompareWidth4, nil
	case Width8:
		return mergeCompareWidth8, nil
	case Width16:
		return mergeCompareWidth16, nil
	case Width32:
		return mergeCompareWidth32, nil
	default:
		return nil, ErrUnsupportedWidth
	}
}

// NewMergeComparator builds a Comparator for use by MergeDedupKeyed and
// branchFreeSearch during a conflict band: the left RowID passed to it
// is always a persisted-stream row position (read from ColumnData) and
// the right RowID is always an O3 index entry (read from O3Data),
// regardless of either one's tag bit. Callers pass a plain row position
// (e.g. PlainRowID(srcPos)) on the left and the O3 index's own RowID,
// which arrives bit-63-clear, on the right; only each id's Index() is
// consulted, never its tag.
func NewMergeComparator(cols []KeyColumn) (Comparator, error) {
	if len(cols) == 0 {
		return nil, ErrNoKeyColumns
	}
	if len(cols) == 1 {
		col := cols[0]
		cmp, err := mergeWidthCompare(col.Width)
		if err != nil {
			return nil, err
		}
		return func(l, r RowID) int { return cmp(&col, int64(l.Index()), int64(r.Index())) }, nil
	}

	fns := make([]mergeWidthCompareFunc, len(cols))
	owned := make([]KeyColumn, len(cols))
	copy(owned, cols)
	for i := range owned {
		fn, err := mergeWidthCompare(owned[i].Width)
		if err != nil {
			return nil, err
		}
		fns[i] = fn
	}
	return func(l, r RowID) int {
		srcPos, o3Pos := int64(l.Index()), int64(r.Index())
		for i := range owned {
			if diff := fns[i](&owned[i], srcPos, o3Pos); diff != 0 {
				return diff
			}
		}
		return 0
	}, nil
}
