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

package volume

import (
	"fmt"
	"time"

	"github.com/minio/minivsfs/pkg/checksum"
	fserrors "github.com/minio/minivsfs/pkg/fs/errors"
)

// Inode denotes a 128 byte inode record. Inode numbers are 1-indexed.
//
// THE CRC FIELD MUST STAY LAST.
type Inode struct {
	Mode       uint16
	Links      uint16
	UID        uint32
	GID        uint32
	SizeBytes  uint64
	Atime      uint64
	Mtime      uint64
	Ctime      uint64
	Direct     [DirectMax]uint32
	Reserved0  uint32
	Reserved1  uint32
	Reserved2  uint32
	ProjID     uint32
	UID16GID16 uint32
	XattrPtr   uint64
	CRC        uint64 // low 32 bits: crc32(record[0:120])
}

// NewInode returns an inode of given mode with all timestamps set to now.
func NewInode(mode uint16, links uint16, size uint64, now time.Time) *Inode {
	ts := uint64(now.Unix())
	return &Inode{
		Mode:      mode,
		Links:     links,
		SizeBytes: size,
		Atime:     ts,
		Mtime:     ts,
		Ctime:     ts,
		ProjID:    ProjectID,
	}
}

// Marshal returns the packed 128 byte record.
func (inode *Inode) Marshal() []byte {
	return encode(inode, InodeSize)
}

func (inode *Inode) compute() uint32 {
	c := *inode
	c.CRC = 0
	return checksum.CRC32(c.Marshal()[:InodeSize-8])
}

// Finalize computes and stores the checksum.
func (inode *Inode) Finalize() uint32 {
	crc := inode.compute()
	inode.CRC = uint64(crc)
	return crc
}

// Valid returns whether the stored checksum matches the record.
func (inode *Inode) Valid() bool {
	return inode.CRC == uint64(inode.compute())
}

// IsDir returns whether the inode is a directory.
func (inode *Inode) IsDir() bool {
	return inode.Mode == ModeDir
}

// IsRegular returns whether the inode is a regular file.
func (inode *Inode) IsRegular() bool {
	return inode.Mode == ModeFile
}

// Blocks returns the non-zero direct pointers in order.
func (inode *Inode) Blocks() []uint32 {
	var blocks []uint32
	for _, block := range inode.Direct {
		if block != 0 {
			blocks = append(blocks, block)
		}
	}
	return blocks
}

// UnmarshalInode decodes an inode record.
func UnmarshalInode(data []byte) (*Inode, error) {
	var inode Inode
	if err := decode(data, &inode, InodeSize); err != nil {
		return nil, err
	}
	return &inode, nil
}

func inodeOffset(table []byte, number uint32) (int, error) {
	if number == 0 {
		return 0, fmt.Errorf("%w; invalid inode number 0", fserrors.ErrIntegrity)
	}
	offset := int(number-1) * InodeSize
	if offset+InodeSize > len(table) {
		return 0, fmt.Errorf("%w; inode %v is outside of inode table", fserrors.ErrIntegrity, number)
	}
	return offset, nil
}

// ReadInode decodes inode number from an inode table.
func ReadInode(table []byte, number uint32) (*Inode, error) {
	offset, err := inodeOffset(table, number)
	if err != nil {
		return nil, err
	}
	return UnmarshalInode(table[offset : offset+InodeSize])
}

// WriteInode encodes inode into slot number of an inode table.
func WriteInode(table []byte, number uint32, inode *Inode) error {
	offset, err := inodeOffset(table, number)
	if err != nil {
		return err
	}
	copy(table[offset:offset+InodeSize], inode.Marshal())
	return nil
}
