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

// Command dedupbench synthesizes a batch of out-of-order rows on top of a
// persisted, timestamp-sorted index and times MergeDedup and
// MergeDedupKeyed over it. Each run is tagged with a random correlation
// ID so results from several invocations can be told apart in a shared
// log.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"
	"unsafe"

	"github.com/google/uuid"

	"github.com/sneller-contrib/o3dedup/dedup"
)

func fatalf(f string, args ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", args...)
	os.Exit(1)
}

// synth builds a persisted timestamp stream of n strictly increasing
// timestamps and an O3 index of m entries whose timestamps fall inside
// the persisted range at rate overlap (0..1 fraction of O3 rows that
// collide with an existing persisted timestamp). The O3
// index's row identifiers are bit-clear.
func synth(rng *rand.Rand, n, m int, overlap float64) ([]dedup.Timestamp, []dedup.Entry) {
	src := make([]dedup.Timestamp, n)
	for i := range src {
		src[i] = dedup.Timestamp(i * 10)
	}

	idx := make([]dedup.Entry, m)
	for i := range idx {
		var ts dedup.Timestamp
		if n > 0 && rng.Float64() < overlap {
			ts = src[rng.Intn(n)]
		} else {
			ts = dedup.Timestamp(rng.Intn(n*10+1)) + 1
		}
		idx[i] = dedup.Entry{TS: ts, ID: dedup.PlainRowID(uint64(i))}
	}

	d1 := make([]dedup.Entry, m)
	d2 := make([]dedup.Entry, m)
	return src, dedup.StableSortKeyed(idx, d1, d2, 0, m, nil)
}

// synthKey builds a fixed-width key column over the persisted and O3
// buffers, with a rate collide (0..1) of O3 key values copied from a
// randomly chosen persisted row. That row is picked without regard to
// timestamps, so a copied key can match in MergeDedupKeyed only when the
// row also shares the O3 row's timestamp.
func synthKey(rng *rand.Rand, persistedN, o3N int, collide float64) dedup.KeyColumn {
	persisted := make([]int32, persistedN)
	for i := range persisted {
		persisted[i] = rng.Int31()
	}
	o3 := make([]int32, o3N)
	for i := range o3 {
		if persistedN > 0 && rng.Float64() < collide {
			o3[i] = persisted[rng.Intn(persistedN)]
		} else {
			o3[i] = rng.Int31()
		}
	}

	var nullValue [32]byte
	binary.LittleEndian.PutUint32(nullValue[0:4], 0)
	return dedup.KeyColumn{
		Width:      dedup.Width4,
		ColumnTop:  0,
		ColumnData: unsafe.Pointer(unsafe.SliceData(persisted)),
		O3Data:     unsafe.Pointer(unsafe.SliceData(o3)),
		NullValue:  nullValue,
	}
}

func timeIt(iters int, fn func()) time.Duration {
	var best time.Duration
	for i := 0; i < iters; i++ {
		start := time.Now()
		fn()
		dur := time.Since(start)
		if best == 0 || dur < best {
			best = dur
		}
	}
	return best
}

func main() {
	var (
		persisted int
		o3        int
		overlap   float64
		collide   float64
		seed      int64
		iters     int
	)
	flag.IntVar(&persisted, "persisted", 1_000_000, "number of persisted rows")
	flag.IntVar(&o3, "o3", 100_000, "number of out-of-order rows in the batch")
	flag.Float64Var(&overlap, "overlap", 0.3, "fraction of O3 rows sharing a timestamp with a persisted row")
	flag.Float64Var(&collide, "collide", 0.5, "fraction of O3 rows sharing a dedup key with a persisted row")
	flag.Int64Var(&seed, "seed", 1, "PRNG seed")
	flag.IntVar(&iters, "iters", 5, "number of timed iterations")
	flag.Parse()

	runID := uuid.New()
	rng := rand.New(rand.NewSource(seed))

	src, idx := synth(rng, persisted, o3, overlap)
	dest := make([]dedup.Entry, len(src)+len(idx))

	var mergeRows int
	mergeDur := timeIt(iters, func() {
		mergeRows = dedup.MergeDedup(src, idx, dest)
	})
	if mergeRows == 0 {
		fatalf("run %s: MergeDedup produced zero rows", runID)
	}

	col := synthKey(rng, persisted, o3, collide)
	cmp, err := dedup.NewMergeComparator([]dedup.KeyColumn{col})
	if err != nil {
		fatalf("run %s: building merge comparator: %s", runID, err)
	}

	var keyedRows int
	keyedDur := timeIt(iters, func() {
		keyedRows = dedup.MergeDedupKeyed(src, idx, dest, cmp)
	})
	if keyedRows == 0 {
		fatalf("run %s: MergeDedupKeyed produced zero rows", runID)
	}

	total := float64(len(src) + len(idx))
	fmt.Printf("run %s: persisted=%d o3=%d overlap=%.2f collide=%.2f\n", runID, persisted, o3, overlap, collide)
	fmt.Printf("  MergeDedup:      %.0f rows/s (best of %d)\n", total/mergeDur.Seconds(), iters)
	fmt.Printf("  MergeDedupKeyed: %.0f rows/s (best of %d)\n", total/keyedDur.Seconds(), iters)
}
