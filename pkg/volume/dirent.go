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
	"bytes"
	"fmt"

	"github.com/minio/minivsfs/pkg/checksum"
	fserrors "github.com/minio/minivsfs/pkg/fs/errors"
)

// DirEntry denotes a 64 byte directory entry. InodeNo 0 marks a free slot.
//
// THE CHECKSUM FIELD MUST STAY LAST.
type DirEntry struct {
	InodeNo  uint32
	Type     uint8
	RawName  [MaxNameLen + 1]byte
	Checksum uint8 // xor(record[0:63])
}

// NewDirEntry returns a finalized entry.
func NewDirEntry(inodeNo uint32, entryType uint8, name string) *DirEntry {
	entry := &DirEntry{InodeNo: inodeNo, Type: entryType}
	entry.SetName(name)
	entry.Finalize()
	return entry
}

// SetName stores name truncated to MaxNameLen bytes plus NUL.
func (entry *DirEntry) SetName(name string) {
	entry.RawName = [MaxNameLen + 1]byte{}
	copy(entry.RawName[:MaxNameLen], name)
}

// Name returns the stored name up to the first NUL.
func (entry *DirEntry) Name() string {
	name := entry.RawName[:]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	return string(name)
}

// Free returns whether the slot is unused.
func (entry *DirEntry) Free() bool {
	return entry.InodeNo == 0
}

// Marshal returns the packed 64 byte record.
func (entry *DirEntry) Marshal() []byte {
	return encode(entry, DirEntrySize)
}

func (entry *DirEntry) compute() uint8 {
	return checksum.XOR8(entry.Marshal()[:DirEntrySize-1])
}

// Finalize computes and stores the checksum.
func (entry *DirEntry) Finalize() uint8 {
	entry.Checksum = entry.compute()
	return entry.Checksum
}

// Valid returns whether the stored checksum matches the record.
func (entry *DirEntry) Valid() bool {
	return entry.Checksum == entry.compute()
}

// UnmarshalDirEntry decodes a directory entry.
func UnmarshalDirEntry(data []byte) (*DirEntry, error) {
	var entry DirEntry
	if err := decode(data, &entry, DirEntrySize); err != nil {
		return nil, err
	}
	return &entry, nil
}

func direntOffset(block []byte, slot int) (int, error) {
	if slot < 0 || slot >= DirEntriesPerBlock || (slot+1)*DirEntrySize > len(block) {
		return 0, fmt.Errorf("%w; directory slot %v out of range", fserrors.ErrIntegrity, slot)
	}
	return slot * DirEntrySize, nil
}

// ReadDirEntry decodes slot of a directory block.
func ReadDirEntry(block []byte, slot int) (*DirEntry, error) {
	offset, err := direntOffset(block, slot)
	if err != nil {
		return nil, err
	}
	return UnmarshalDirEntry(block[offset : offset+DirEntrySize])
}

// WriteDirEntry encodes entry into slot of a directory block.
func WriteDirEntry(block []byte, slot int, entry *DirEntry) error {
	offset, err := direntOffset(block, slot)
	if err != nil {
		return err
	}
	copy(block[offset:offset+DirEntrySize], entry.Marshal())
	return nil
}
