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

// Package layout derives the fixed block layout of a new volume.
package layout

import (
	"fmt"

	fserrors "github.com/minio/minivsfs/pkg/fs/errors"
	"github.com/minio/minivsfs/pkg/volume"
)

// Size and inode count limits.
const (
	MinSizeKiB = 180
	MaxSizeKiB = 4096
	MinInodes  = 128
	MaxInodes  = 512
)

// Layout denotes region offsets and lengths in blocks.
type Layout struct {
	SizeKiB           uint32 `json:"sizeKiB"`
	InodeCount        uint64 `json:"inodeCount"`
	TotalBlocks       uint64 `json:"totalBlocks"`
	SuperBlockStart   uint64 `json:"superBlockStart"`
	InodeBitmapStart  uint64 `json:"inodeBitmapStart"`
	InodeBitmapBlocks uint64 `json:"inodeBitmapBlocks"`
	DataBitmapStart   uint64 `json:"dataBitmapStart"`
	DataBitmapBlocks  uint64 `json:"dataBitmapBlocks"`
	InodeTableStart   uint64 `json:"inodeTableStart"`
	InodeTableBlocks  uint64 `json:"inodeTableBlocks"`
	DataRegionStart   uint64 `json:"dataRegionStart"`
	DataRegionBlocks  uint64 `json:"dataRegionBlocks"`
}

// Validate checks size and inode count limits.
func Validate(sizeKiB, inodeCount uint32) error {
	if sizeKiB < MinSizeKiB || sizeKiB > MaxSizeKiB {
		return fmt.Errorf("%w; size must be between %v and %v KiB", fserrors.ErrInvalidSize, MinSizeKiB, MaxSizeKiB)
	}

	if sizeKiB%4 != 0 {
		return fmt.Errorf("%w; size must be a multiple of 4 KiB", fserrors.ErrInvalidSize)
	}

	if inodeCount < MinInodes || inodeCount > MaxInodes {
		return fmt.Errorf("%w; inode count must be between %v and %v", fserrors.ErrInvalidInodeCount, MinInodes, MaxInodes)
	}

	totalBlocks := uint64(sizeKiB) * 1024 / volume.BlockSize
	if maxInodes := totalBlocks * volume.InodesPerBlock; uint64(inodeCount) > maxInodes {
		return fmt.Errorf("%w (max %v)", fserrors.ErrTooManyInodes, maxInodes)
	}

	return nil
}

// Calculate validates inputs and computes the layout of a volume of
// sizeKiB KiB holding inodeCount inodes.
func Calculate(sizeKiB, inodeCount uint32) (*Layout, error) {
	if err := Validate(sizeKiB, inodeCount); err != nil {
		return nil, err
	}

	totalBlocks := uint64(sizeKiB) * 1024 / volume.BlockSize
	inodeTableBlocks := (uint64(inodeCount) + volume.InodesPerBlock - 1) / volume.InodesPerBlock
	dataRegionStart := volume.InodeTableStart + inodeTableBlocks

	if totalBlocks <= dataRegionStart {
		return nil, fmt.Errorf("%w; need at least 1 data block for root directory", fserrors.ErrNoDataRegion)
	}

	return &Layout{
		SizeKiB:           sizeKiB,
		InodeCount:        uint64(inodeCount),
		TotalBlocks:       totalBlocks,
		SuperBlockStart:   volume.SuperBlockStart,
		InodeBitmapStart:  volume.InodeBitmapStart,
		InodeBitmapBlocks: volume.InodeBitmapBlocks,
		DataBitmapStart:   volume.DataBitmapStart,
		DataBitmapBlocks:  volume.DataBitmapBlocks,
		InodeTableStart:   volume.InodeTableStart,
		InodeTableBlocks:  inodeTableBlocks,
		DataRegionStart:   dataRegionStart,
		DataRegionBlocks:  totalBlocks - dataRegionStart,
	}, nil
}

// SuperBlock returns an unfinalized superblock describing l.
func (l *Layout) SuperBlock() *volume.SuperBlock {
	return &volume.SuperBlock{
		Magic:             volume.MagicNumber,
		Version:           volume.Version,
		BlockSize:         volume.BlockSize,
		TotalBlocks:       l.TotalBlocks,
		InodeCount:        l.InodeCount,
		InodeBitmapStart:  l.InodeBitmapStart,
		InodeBitmapBlocks: l.InodeBitmapBlocks,
		DataBitmapStart:   l.DataBitmapStart,
		DataBitmapBlocks:  l.DataBitmapBlocks,
		InodeTableStart:   l.InodeTableStart,
		InodeTableBlocks:  l.InodeTableBlocks,
		DataRegionStart:   l.DataRegionStart,
		DataRegionBlocks:  l.DataRegionBlocks,
		RootInode:         volume.RootInode,
	}
}

// FromSuperBlock returns the layout recorded in sb.
func FromSuperBlock(sb *volume.SuperBlock) *Layout {
	return &Layout{
		SizeKiB:           uint32(sb.TotalBlocks * volume.BlockSize / 1024),
		InodeCount:        sb.InodeCount,
		TotalBlocks:       sb.TotalBlocks,
		SuperBlockStart:   volume.SuperBlockStart,
		InodeBitmapStart:  sb.InodeBitmapStart,
		InodeBitmapBlocks: sb.InodeBitmapBlocks,
		DataBitmapStart:   sb.DataBitmapStart,
		DataBitmapBlocks:  sb.DataBitmapBlocks,
		InodeTableStart:   sb.InodeTableStart,
		InodeTableBlocks:  sb.InodeTableBlocks,
		DataRegionStart:   sb.DataRegionStart,
		DataRegionBlocks:  sb.DataRegionBlocks,
	}
}

// Region denotes a contiguous range of blocks.
type Region struct {
	Name   string `json:"name"`
	Start  uint64 `json:"start"`
	Blocks uint64 `json:"blocks"`
}

// Regions returns all regions in on-disk order.
func (l *Layout) Regions() []Region {
	return []Region{
		{"superblock", l.SuperBlockStart, 1},
		{"inode bitmap", l.InodeBitmapStart, l.InodeBitmapBlocks},
		{"data bitmap", l.DataBitmapStart, l.DataBitmapBlocks},
		{"inode table", l.InodeTableStart, l.InodeTableBlocks},
		{"data region", l.DataRegionStart, l.DataRegionBlocks},
	}
}
