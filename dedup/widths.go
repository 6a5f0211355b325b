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
	"encoding/binary"
	"unsafe"
)

// int128 is a signed 128-bit integer split into a signed high half and
// an unsigned low half, the representation two's-complement 128-bit
// values take when split across two uint64 words.
type int128 struct {
	Hi int64
	Lo uint64
}

func cmpInt128(a, b int128) int {
	if a.Hi != b.Hi {
		if a.Hi < b.Hi {
			return -1
		}
		return 1
	}
	if a.Lo != b.Lo {
		if a.Lo < b.Lo {
			return -1
		}
		return 1
	}
	return 0
}

// int256 holds a 256-bit key value as two 128-bit halves. Comparison is
// lexicographic on (hi, lo), not a true 256-bit numeric ordering; this
// must match bit-for-bit, not just "be a valid total order".
type int256 struct {
	Hi int128
	Lo int128
}

func cmpInt256(a, b int256) int {
	if c := cmpInt128(a.Hi, b.Hi); c != 0 {
		return c
	}
	return cmpInt128(a.Lo, b.Lo)
}

func bytesAt(base unsafe.Pointer, idx int64, width int64) []byte {
	return unsafe.Slice((*byte)(unsafe.Add(base, uintptr(idx)*uintptr(width))), width)
}

func readInt8(base unsafe.Pointer, idx int64) int8 {
	return int8(bytesAt(base, idx, 1)[0])
}

func readInt16(base unsafe.Pointer, idx int64) int16 {
	return int16(binary.LittleEndian.Uint16(bytesAt(base, idx, 2)))
}

func readInt32(base unsafe.Pointer, idx int64) int32 {
	return int32(binary.LittleEndian.Uint32(bytesAt(base, idx, 4)))
}

func readInt64(base unsafe.Pointer, idx int64) int64 {
	return int64(binary.LittleEndian.Uint64(bytesAt(base, idx, 8)))
}

func readInt128(base unsafe.Pointer, idx int64) int128 {
	b := bytesAt(base, idx, 16)
	return int128{
		Lo: binary.LittleEndian.Uint64(b[0:8]),
		Hi: int64(binary.LittleEndian.Uint64(b[8:16])),
	}
}

func readInt256(base unsafe.Pointer, idx int64) int256 {
	b := bytesAt(base, idx, 32)
	return int256{
		Lo: int128{
			Lo: binary.LittleEndian.Uint64(b[0:8]),
			Hi: int64(binary.LittleEndian.Uint64(b[8:16])),
		},
		Hi: int128{
			Lo: binary.LittleEndian.Uint64(b[16:24]),
			Hi: int64(binary.LittleEndian.Uint64(b[24:32])),
		},
	}
}

func nullInt8(n *[32]byte) int8   { return int8(n[0]) }
func nullInt16(n *[32]byte) int16 { return int16(binary.LittleEndian.Uint16(n[0:2])) }
func nullInt32(n *[32]byte) int32 { return int32(binary.LittleEndian.Uint32(n[0:4])) }
func nullInt64(n *[32]byte) int64 { return int64(binary.LittleEndian.Uint64(n[0:8])) }

func nullInt128(n *[32]byte) int128 {
	return int128{
		Lo: binary.LittleEndian.Uint64(n[0:8]),
		Hi: int64(binary.LittleEndian.Uint64(n[8:16])),
	}
}

func nullInt256(n *[32]byte) int256 {
	return int256{
		Lo: int128{
			Lo: binary.LittleEndian.Uint64(n[0:8]),
			Hi: int64(binary.LittleEndian.Uint64(n[8:16])),
		},
		Hi: int128{
			Lo: binary.LittleEndian.Uint64(n[16:24]),
			Hi: int64(binary.LittleEndian.Uint64(n[24:32])),
		},
	}
}
