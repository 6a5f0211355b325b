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

// branchFreeSearch locates, within a single conflict band, the entry
// whose key compares equal to target under cmp. It halves the search
// window each iteration the way a binary search does, but advances the
// window by arithmetic addition rather than a taken/not-taken branch on
// each half-step, and double-checks the neighboring slot after the loop
// narrows to one candidate -- the same shape as the source's
// branch_free_search, minus the cache-line prefetch, which has no
// portable equivalent in Go (see DESIGN.md).
//
// Returns the band-relative index of the match, or -1 if neither the
// final candidate nor its successor matches.
func branchFreeSearch(target RowID, band []Entry, cmp Comparator) int {
	n := len(band)
	if n == 0 {
		return -1
	}
	base := 0
	for n > 1 {
		half := n / 2
		step := 0
		if cmp(target, band[base+half].ID) > 0 {
			step = half
		}
		base += step
		n -= half
	}
	if cmp(target, band[base].ID) == 0 {
		return base
	}
	if base+1 < len(band) && cmp(target, band[base+1].ID) == 0 {
		return base + 1
	}
	return -1
}
