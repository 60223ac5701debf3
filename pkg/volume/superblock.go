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
	"io"
	"time"

	"github.com/minio/minivsfs/pkg/checksum"
	fserrors "github.com/minio/minivsfs/pkg/fs/errors"
)

// SuperBlock denotes MiniVSFS superblock stored in block 0.
//
// THE CHECKSUM FIELD MUST STAY LAST.
type SuperBlock struct {
	Magic             uint32
	Version           uint32
	BlockSize         uint32
	TotalBlocks       uint64
	InodeCount        uint64
	InodeBitmapStart  uint64
	InodeBitmapBlocks uint64
	DataBitmapStart   uint64
	DataBitmapBlocks  uint64
	InodeTableStart   uint64
	InodeTableBlocks  uint64
	DataRegionStart   uint64
	DataRegionBlocks  uint64
	RootInode         uint64
	MtimeEpoch        uint64
	Flags             uint32
	Checksum          uint32 // crc32(block[0:4092])
}

// Marshal returns the packed 116 byte record.
func (sb *SuperBlock) Marshal() []byte {
	return encode(sb, SuperBlockSize)
}

// MarshalBlock returns the record zero padded to a full block.
func (sb *SuperBlock) MarshalBlock() []byte {
	block := make([]byte, BlockSize)
	copy(block, sb.Marshal())
	return block
}

func (sb *SuperBlock) compute() uint32 {
	c := *sb
	c.Checksum = 0
	return checksum.CRC32(c.MarshalBlock()[:BlockSize-4])
}

// Finalize computes and stores the checksum.
func (sb *SuperBlock) Finalize() uint32 {
	sb.Checksum = sb.compute()
	return sb.Checksum
}

// Valid returns whether the stored checksum matches the record.
func (sb *SuperBlock) Valid() bool {
	return sb.Checksum == sb.compute()
}

// Touch sets modify time and refreshes the checksum.
func (sb *SuperBlock) Touch(now time.Time) {
	sb.MtimeEpoch = uint64(now.Unix())
	sb.Finalize()
}

// ModTime returns last modify time.
func (sb *SuperBlock) ModTime() time.Time {
	return time.Unix(int64(sb.MtimeEpoch), 0).UTC()
}

// Type returns "minivsfs".
func (sb *SuperBlock) Type() string {
	return "minivsfs"
}

// TotalCapacity returns total capacity of the volume.
func (sb *SuperBlock) TotalCapacity() uint64 {
	return sb.TotalBlocks * uint64(sb.BlockSize)
}

// ImageSize returns the byte length of the whole image.
func (sb *SuperBlock) ImageSize() int64 {
	return int64(sb.TotalBlocks) * BlockSize
}

// UnmarshalSuperBlock decodes a superblock from the start of block.
func UnmarshalSuperBlock(block []byte) (*SuperBlock, error) {
	var sb SuperBlock
	if err := decode(block, &sb, SuperBlockSize); err != nil {
		return nil, err
	}
	return &sb, nil
}

// Probe reads block 0 from reader and checks the magic number. No other
// field is validated.
func Probe(reader io.Reader) (*SuperBlock, error) {
	block := make([]byte, BlockSize)
	if _, err := io.ReadFull(reader, block); err != nil {
		return nil, fserrors.IOError("read superblock", err)
	}

	sb, err := UnmarshalSuperBlock(block)
	if err != nil {
		return nil, err
	}

	if sb.Magic != MagicNumber {
		return nil, fmt.Errorf("%w; found %#x", fserrors.ErrBadMagic, sb.Magic)
	}

	return sb, nil
}
