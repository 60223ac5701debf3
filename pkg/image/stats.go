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
	"time"

	"github.com/minio/minivsfs/pkg/volume"
)

// Stats denotes usage of an image.
type Stats struct {
	TotalBlocks      uint64    `json:"totalBlocks"`
	InodeCount       uint64    `json:"inodeCount"`
	UsedInodes       uint64    `json:"usedInodes"`
	DataRegionStart  uint64    `json:"dataRegionStart"`
	DataRegionBlocks uint64    `json:"dataRegionBlocks"`
	UsedDataBlocks   uint64    `json:"usedDataBlocks"`
	DirEntries       uint64    `json:"dirEntries"`
	FreeDirSlots     uint64    `json:"freeDirSlots"`
	ModTime          time.Time `json:"modTime"`
}

// FreeInodes returns the number of unallocated inodes.
func (s Stats) FreeInodes() uint64 {
	return s.InodeCount - s.UsedInodes
}

// FreeDataBlocks returns the number of unallocated data blocks.
func (s Stats) FreeDataBlocks() uint64 {
	return s.DataRegionBlocks - s.UsedDataBlocks
}

// Stats returns usage computed from the bitmaps and the root directory.
func (img *Image) Stats() Stats {
	sb := img.SuperBlock
	stats := Stats{
		TotalBlocks:      sb.TotalBlocks,
		InodeCount:       sb.InodeCount,
		UsedInodes:       uint64(img.InodeBitmap.Count(uint32(sb.InodeCount))),
		DataRegionStart:  sb.DataRegionStart,
		DataRegionBlocks: sb.DataRegionBlocks,
		UsedDataBlocks:   uint64(img.DataBitmap.Count(uint32(sb.DataRegionBlocks))),
		ModTime:          sb.ModTime(),
	}

	if entries, err := img.List(); err == nil {
		stats.DirEntries = uint64(len(entries))
		stats.FreeDirSlots = volume.DirEntriesPerBlock - stats.DirEntries
	}

	return stats
}

// Entry denotes a used root directory entry.
type Entry struct {
	Slot  int    `json:"slot"`
	Inode uint32 `json:"inode"`
	Type  string `json:"type"`
	Name  string `json:"name"`
	Size  uint64 `json:"size"`
}

func typeName(entryType uint8) string {
	switch entryType {
	case volume.TypeFile:
		return "file"
	case volume.TypeDir:
		return "dir"
	default:
		return "unknown"
	}
}

// List returns used entries of the root directory in slot order.
func (img *Image) List() ([]Entry, error) {
	block, err := img.RootDirBlock()
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for slot := 0; slot < volume.DirEntriesPerBlock; slot++ {
		dirent, err := volume.ReadDirEntry(block, slot)
		if err != nil {
			return nil, err
		}
		if dirent.Free() {
			continue
		}
		entry := Entry{
			Slot:  slot,
			Inode: dirent.InodeNo,
			Type:  typeName(dirent.Type),
			Name:  dirent.Name(),
		}
		if inode, err := img.Inode(dirent.InodeNo); err == nil {
			entry.Size = inode.SizeBytes
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
