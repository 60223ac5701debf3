// This file is part of MinIO
// Copyright (c) 2026 MinIO, Inc.
//
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

// Package bitmap implements first-fit allocation over a packed bit vector.
// Bits are stored least-significant-bit first within each byte.
package bitmap

import "errors"

// ErrNotFound denotes no clear bit below the requested limit.
var ErrNotFound = errors.New("no free bit found")

// Bitmap is a packed bit vector.
type Bitmap []byte

// FindFree returns the lowest clear bit whose index is below maxBits.
func (b Bitmap) FindFree(maxBits uint32) (uint32, error) {
	bytes := (uint64(maxBits) + 7) / 8
	if bytes > uint64(len(b)) {
		bytes = uint64(len(b))
	}

	for byteIndex := uint64(0); byteIndex < bytes; byteIndex++ {
		if b[byteIndex] == 0xFF {
			continue
		}
		for bit := uint64(0); bit < 8; bit++ {
			if b[byteIndex]&(1<<bit) != 0 {
				continue
			}
			index := byteIndex*8 + bit
			if index >= uint64(maxBits) {
				return 0, ErrNotFound
			}
			return uint32(index), nil
		}
	}

	return 0, ErrNotFound
}

// Set sets bit at index. Caller must ensure index is within the bitmap.
func (b Bitmap) Set(index uint32) {
	b[index/8] |= 1 << (index % 8)
}

// IsSet returns whether bit at index is set.
func (b Bitmap) IsSet(index uint32) bool {
	if uint64(index/8) >= uint64(len(b)) {
		return false
	}
	return b[index/8]&(1<<(index%8)) != 0
}

// Count returns the number of set bits below maxBits.
func (b Bitmap) Count(maxBits uint32) (count uint32) {
	for i := uint32(0); i < maxBits; i++ {
		if b.IsSet(i) {
			count++
		}
	}
	return count
}

// FirstSetFrom returns the lowest set bit at or above from, if any.
func (b Bitmap) FirstSetFrom(from uint32) (uint32, bool) {
	for i := uint64(from); i < uint64(len(b))*8; i++ {
		if b.IsSet(uint32(i)) {
			return uint32(i), true
		}
	}
	return 0, false
}

// Clone returns a copy of the bitmap.
func (b Bitmap) Clone() Bitmap {
	c := make(Bitmap, len(b))
	copy(c, b)
	return c
}
