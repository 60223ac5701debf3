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

// Package checksum implements the integrity checksums used by on-disk records.
package checksum

import "hash/crc32"

// Polynomial is the reflected CRC32 polynomial.
const Polynomial = 0xEDB88320

// table is built once at package initialization and never modified.
var table = crc32.MakeTable(Polynomial)

// CRC32 returns the reflected CRC32 of data, pre and post XORed with 0xFFFFFFFF.
func CRC32(data []byte) uint32 {
	return crc32.Checksum(data, table)
}

// XOR8 returns XOR of all bytes of data.
func XOR8(data []byte) (x uint8) {
	for _, b := range data {
		x ^= b
	}
	return x
}
