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

import "testing"

// These tests probe a conflict band the way MergeDedupKeyed does: probe
// ids are plain persisted-row positions, band ids are the O3 index's own
// (bit-clear) row identifiers, and cmp comes from
// NewMergeComparator so the left/right argument position -- not either
// id's tag bit -- decides which buffer is read.

func TestBranchFreeSearchFindsEveryPosition(t *testing.T) {
	persistedKeys := make([]int32, 9)
	o3Keys := make([]int32, 9)
	for i := range o3Keys {
		o3Keys[i] = int32(i * 10)
		persistedKeys[i] = int32(i * 10)
	}
	col := int32Column(persistedKeys, o3Keys, 0, 0)
	cmp, err := NewMergeComparator([]KeyColumn{col})
	if err != nil {
		t.Fatal(err)
	}

	band := make([]Entry, len(o3Keys))
	for i := range band {
		band[i] = Entry{TS: 1, ID: PlainRowID(uint64(i))}
	}

	for i := range persistedKeys {
		got := branchFreeSearch(PlainRowID(uint64(i)), band, cmp)
		if got != i {
			t.Fatalf("probing band[%d] with the equal persisted row: got %d", i, got)
		}
	}
}

func TestBranchFreeSearchNoMatch(t *testing.T) {
	o3Keys := []int32{10, 20, 30, 40}
	persistedKeys := []int32{99}

	col := int32Column(persistedKeys, o3Keys, 0, 0)
	cmp, err := NewMergeComparator([]KeyColumn{col})
	if err != nil {
		t.Fatal(err)
	}

	band := make([]Entry, len(o3Keys))
	for i := range band {
		band[i] = Entry{TS: 1, ID: PlainRowID(uint64(i))}
	}

	if got := branchFreeSearch(PlainRowID(0), band, cmp); got != -1 {
		t.Fatalf("expected no match, got %d", got)
	}
}

func TestBranchFreeSearchSingletonBand(t *testing.T) {
	col := int32Column([]int32{42}, []int32{42}, 0, 0)
	cmp, err := NewMergeComparator([]KeyColumn{col})
	if err != nil {
		t.Fatal(err)
	}
	band := []Entry{{TS: 1, ID: PlainRowID(0)}}
	if got := branchFreeSearch(PlainRowID(0), band, cmp); got != 0 {
		t.Fatalf("expected match at 0, got %d", got)
	}
}

func TestBranchFreeSearchEmptyBand(t *testing.T) {
	if got := branchFreeSearch(PlainRowID(0), nil, nil); got != -1 {
		t.Fatalf("expected -1 for empty band, got %d", got)
	}
}
