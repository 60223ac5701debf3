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

package image

import (
	"fmt"

	fserrors "github.com/minio/minivsfs/pkg/fs/errors"
	"github.com/minio/minivsfs/pkg/volume"
)

// Problem denotes an inconsistency found by Verify.
type Problem struct {
	Object  string `json:"object"`
	Message string `json:"message"`

	// Err is ErrChecksumMismatch for checksum failures and ErrIntegrity
	// otherwise.
	Err error `json:"-"`
}

func (p Problem) String() string {
	return p.Object + ": " + p.Message
}

type problems []Problem

func (p *problems) add(object, format string, args ...interface{}) {
	*p = append(*p, Problem{Object: object, Message: fmt.Sprintf(format, args...), Err: fserrors.ErrIntegrity})
}

func (p *problems) checksumMismatch(object string) {
	*p = append(*p, Problem{Object: object, Message: "checksum mismatch", Err: fserrors.ErrChecksumMismatch})
}

// Verify recomputes every checksum reachable from the superblock and checks
// the bitmap invariants. It returns nil for a consistent image.
func (img *Image) Verify() []Problem {
	var result problems
	sb := img.SuperBlock

	if !sb.Valid() {
		result.checksumMismatch("superblock")
	}
	if sb.Version != volume.Version {
		result.add("superblock", "unsupported version %v", sb.Version)
	}
	if sb.BlockSize != volume.BlockSize {
		result.add("superblock", "block size %v; expected %v", sb.BlockSize, volume.BlockSize)
	}

	if bit, found := img.InodeBitmap.FirstSetFrom(uint32(sb.InodeCount)); found {
		result.add("inode bitmap", "padding bit %v is set", bit)
	}
	if bit, found := img.DataBitmap.FirstSetFrom(uint32(sb.DataRegionBlocks)); found {
		result.add("data bitmap", "padding bit %v is set", bit)
	}

	if !img.InodeBitmap.IsSet(volume.RootInode - 1) {
		result.add("root", "root inode is not allocated")
	}

	for bit := uint32(0); bit < uint32(sb.InodeCount); bit++ {
		if !img.InodeBitmap.IsSet(bit) {
			continue
		}
		number := bit + 1
		object := fmt.Sprintf("inode %v", number)
		inode, err := img.Inode(number)
		if err != nil {
			result.add(object, "%v", err)
			continue
		}
		if !inode.Valid() {
			result.checksumMismatch(object)
		}
		if !inode.IsRegular() && !inode.IsDir() {
			result.add(object, "invalid mode %#o", inode.Mode)
		}
		if number == volume.RootInode && !inode.IsDir() {
			result.add(object, "root inode is not a directory")
		}
		for _, block := range inode.Blocks() {
			start := sb.DataRegionStart
			if uint64(block) < start || uint64(block)-start >= sb.DataRegionBlocks {
				result.add(object, "block %v is outside of data region", block)
				continue
			}
			if !img.DataBitmap.IsSet(block - uint32(start)) {
				result.add(object, "block %v is not marked allocated", block)
			}
		}
	}

	block, err := img.RootDirBlock()
	if err != nil {
		result.add("root", "%v", err)
		return result
	}
	for slot := 0; slot < volume.DirEntriesPerBlock; slot++ {
		entry, err := volume.ReadDirEntry(block, slot)
		if err != nil {
			result.add("root", "%v", err)
			continue
		}
		object := fmt.Sprintf("dirent %v", slot)
		if entry.Free() {
			if slot < 2 {
				result.add(object, "reserved entry is free")
			}
			continue
		}
		if !entry.Valid() {
			result.checksumMismatch(object)
		}
		if entry.InodeNo > uint32(sb.InodeCount) || !img.InodeBitmap.IsSet(entry.InodeNo-1) {
			result.add(object, "%q refers to unallocated inode %v", entry.Name(), entry.InodeNo)
		}
	}

	return result
}
