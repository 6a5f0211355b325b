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

import "errors"

// ErrUnsorted is returned when an input index stream is not
// non-decreasing in timestamp. It is a caller contract breach, not a
// transient condition; the call that returns it wrote no meaningful
// output.
var ErrUnsorted = errors.New("dedup: index is not sorted by timestamp")

// ErrUnsupportedWidth is returned by NewComparator when a key column
// declares a width outside {1, 2, 4, 8, 16, 32} bytes.
var ErrUnsupportedWidth = errors.New("dedup: unsupported key column width")

// ErrNoKeyColumns is returned by NewComparator when called with an
// empty column list; callers that have no dedup key should call
// DedupSorted or MergeDedup instead of routing through a comparator.
var ErrNoKeyColumns = errors.New("dedup: comparator requires at least one key column")
