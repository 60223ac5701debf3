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

// Package volume implements the on-disk records of a MiniVSFS volume.
//
// All records are packed little-endian and encoded field by field with
// encoding/binary, so the Go struct layout never leaks into the image.
// Every record carries a trailing checksum which must be refreshed with
// Finalize after each mutation and before the record is written out.
package volume

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Format constants.
const (
	BlockSize      = 4096
	InodeSize      = 128
	DirEntrySize   = 64
	SuperBlockSize = 116

	MagicNumber = 0x4D565346 // "MVSF"
	Version     = 1

	RootInode = 1
	DirectMax = 12
	ProjectID = 7

	InodesPerBlock     = BlockSize / InodeSize
	DirEntriesPerBlock = BlockSize / DirEntrySize

	// MaxNameLen is the longest name stored in a directory entry; one more
	// byte is always reserved for the terminating NUL.
	MaxNameLen = 57

	// MaxFileSize is the largest file addressable by direct pointers.
	MaxFileSize = DirectMax * BlockSize

	// Region geometry.
	SuperBlockStart   = 0
	InodeBitmapStart  = 1
	InodeBitmapBlocks = 1
	DataBitmapStart   = 2
	DataBitmapBlocks  = 1
	InodeTableStart   = 3
)

// Mode values stored in Inode.Mode.
const (
	ModeFile uint16 = 0o100000
	ModeDir  uint16 = 0o040000
)

// Entry types stored in DirEntry.Type.
const (
	TypeFile uint8 = 1
	TypeDir  uint8 = 2
)

func encode(v interface{}, size int) []byte {
	var buf bytes.Buffer
	buf.Grow(size)
	if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
		// only fixed-size records are encoded here
		panic(err)
	}
	if buf.Len() != size {
		panic(fmt.Sprintf("encoded %T is %v bytes; expected %v", v, buf.Len(), size))
	}
	return buf.Bytes()
}

func decode(data []byte, v interface{}, size int) error {
	if len(data) < size {
		return fmt.Errorf("record too short; expected %v bytes, got %v", size, len(data))
	}
	return binary.Read(bytes.NewReader(data[:size]), binary.LittleEndian, v)
}
