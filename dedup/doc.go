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

// Package dedup implements the timestamp-ordered dedup core used when
// committing an out-of-order (O3) batch of rows on top of an already
// persisted, timestamp-sorted partition.
//
// Every routine here is pure, single-threaded and caller-allocated: the
// package never owns the buffers it operates on, never performs I/O, and
// never retains state across calls beyond what a caller explicitly
// passes back in on the next one.
package dedup
