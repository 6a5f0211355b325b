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

import (
	"math/rand"
	"testing"
)

// synthPair builds a persisted timestamp stream of n entries and an O3
// index of m entries, sorted, with the requested fraction of O3 rows
// colliding with a persisted timestamp. The O3 index's row
// identifiers are bit-clear.
func synthPair(rng *rand.Rand, n, m int, overlap float64) ([]Timestamp, []Entry) {
	src := make([]Timestamp, n)
	for i := range src {
		src[i] = Timestamp(i * 10)
	}

	idx := make([]Entry, m)
	for i := range idx {
		var ts Timestamp
		if n > 0 && rng.Float64() < overlap {
			ts = src[rng.Intn(n)]
		} else {
			ts = Timestamp(rng.Intn(n*10+1)) + 1
		}
		idx[i] = Entry{TS: ts, ID: PlainRowID(uint64(i))}
	}

	d1 := make([]Entry, m)
	d2 := make([]Entry, m)
	sorted := StableSortKeyed(idx, d1, d2, 0, m, nil)
	out := make([]Entry, m)
	copy(out, sorted)
	return src, out
}

func FuzzMergeDedupConservesRowCount(f *testing.F) {
	f.Add(int64(1), 10, 5, 0.3)
	f.Add(int64(2), 0, 5, 0.0)
	f.Add(int64(3), 5, 0, 0.0)
	f.Add(int64(4), 50, 50, 1.0)

	f.Fuzz(func(t *testing.T, seed int64, n, m int, overlap float64) {
		if n < 0 || n > 2000 || m < 0 || m > 2000 {
			t.Skip()
		}
		if overlap < 0 || overlap > 1 {
			t.Skip()
		}
		rng := rand.New(rand.NewSource(seed))
		src, idx := synthPair(rng, n, m, overlap)
		dest := make([]Entry, n+m)

		got := MergeDedup(src, idx, dest)
		if got <= 0 && n+m > 0 {
			t.Fatalf("expected a non-empty merge for n=%d m=%d, got %d", n, m, got)
		}
		if got > n+m {
			t.Fatalf("merge produced more rows (%d) than it consumed (%d)", got, n+m)
		}

		// Every persisted row yields one output entry; an O3 entry is
		// dropped exactly when its timestamp also occurs in src.
		inSrc := make(map[Timestamp]bool, n)
		for _, ts := range src {
			inSrc[ts] = true
		}
		want := n + m
		for _, e := range idx {
			if inSrc[e.TS] {
				want--
			}
		}
		if got != want {
			t.Fatalf("merge wrote %d rows, want %d (n=%d m=%d)", got, want, n, m)
		}

		for i := 1; i < got; i++ {
			if dest[i].TS < dest[i-1].TS {
				t.Fatalf("merge output not sorted at %d: %v", i, dest[:got])
			}
		}
	})
}

func FuzzDedupSortedIsIdempotent(f *testing.F) {
	f.Add(int64(1), 10)
	f.Add(int64(2), 0)
	f.Add(int64(3), 1)

	f.Fuzz(func(t *testing.T, seed int64, n int) {
		if n < 0 || n > 2000 {
			t.Skip()
		}
		rng := rand.New(rand.NewSource(seed))
		in := make([]Entry, n)
		ts := Timestamp(0)
		for i := range in {
			if rng.Float64() < 0.5 {
				ts++
			}
			in[i] = Entry{TS: ts, ID: PlainRowID(uint64(i))}
		}

		out := make([]Entry, n)
		first, err := DedupSorted(in, out)
		if err != nil {
			t.Fatalf("unexpected error on sorted input: %v", err)
		}

		second, err := DedupSorted(out[:first], out[:first])
		if err != nil {
			t.Fatalf("unexpected error on second pass: %v", err)
		}
		if second != first {
			t.Fatalf("second pass over deduped data changed row count: %d -> %d", first, second)
		}
		for i := 1; i < first; i++ {
			if out[i].TS <= out[i-1].TS {
				t.Fatalf("output not strictly increasing at %d: %v", i, out[:first])
			}
		}
	})
}
