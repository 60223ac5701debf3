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

// Package fs identifies the filesystem held by an image file.
package fs

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	fserrors "github.com/minio/minivsfs/pkg/fs/errors"
	"github.com/minio/minivsfs/pkg/utils"
	"github.com/minio/minivsfs/pkg/volume"
)

const probeSize = 64 * 1024

// FS denotes filesystem interface.
type FS interface {
	Type() string
	TotalCapacity() uint64
}

type foreignFS struct {
	fsType        string
	totalCapacity uint64
}

func (f *foreignFS) Type() string {
	return f.fsType
}

func (f *foreignFS) TotalCapacity() uint64 {
	return f.totalCapacity
}

func probeMiniVSFS(data []byte) FS {
	if len(data) < volume.BlockSize || binary.LittleEndian.Uint32(data) != volume.MagicNumber {
		return nil
	}
	sb, err := volume.UnmarshalSuperBlock(data[:volume.BlockSize])
	if err != nil {
		return nil
	}
	return sb
}

const (
	ext4SuperBlockOffset = 1024
	ext4Magic            = 0xEF53
	ext4Feature64Bit     = 0x80
)

func probeExt4(data []byte) FS {
	if len(data) < ext4SuperBlockOffset+1024 {
		return nil
	}
	sb := data[ext4SuperBlockOffset:]
	if binary.LittleEndian.Uint16(sb[0x38:]) != ext4Magic {
		return nil
	}

	blocks := uint64(binary.LittleEndian.Uint32(sb[0x04:]))
	if binary.LittleEndian.Uint32(sb[0x60:])&ext4Feature64Bit != 0 {
		blocks |= uint64(binary.LittleEndian.Uint32(sb[0x150:])) << 32
	}
	blockSize := uint64(1024) << binary.LittleEndian.Uint32(sb[0x18:])
	return &foreignFS{fsType: "ext4", totalCapacity: blocks * blockSize}
}

func probeXFS(data []byte) FS {
	if len(data) < 16 || string(data[:4]) != "XFSB" {
		return nil
	}
	blockSize := uint64(binary.BigEndian.Uint32(data[4:]))
	blocks := binary.BigEndian.Uint64(data[8:])
	return &foreignFS{fsType: "xfs", totalCapacity: blocks * blockSize}
}

func probeFAT32(data []byte) FS {
	if len(data) < 512 || string(data[0x52:0x5a]) != "FAT32   " {
		return nil
	}
	sectorSize := uint64(binary.LittleEndian.Uint16(data[11:]))
	sectors := uint64(binary.LittleEndian.Uint16(data[19:]))
	if sectors == 0 {
		sectors = uint64(binary.LittleEndian.Uint32(data[32:]))
	}
	return &foreignFS{fsType: "vfat", totalCapacity: sectors * sectorSize}
}

const swapSignature = "SWAPSPACE2"

func probeSwap(data []byte) FS {
	for page := 0x1000; page <= probeSize; page <<= 1 {
		// 32k page size is not used by any architecture.
		if page == 0x8000 {
			continue
		}
		offset := page - len(swapSignature)
		if len(data) < page {
			break
		}
		if !bytes.Equal(data[offset:page], []byte(swapSignature)) {
			continue
		}
		lastPage := uint64(binary.LittleEndian.Uint32(data[1028:]))
		return &foreignFS{fsType: "linux-swap", totalCapacity: (lastPage + 1) * uint64(page)}
	}
	return nil
}

var probers = []func([]byte) FS{
	probeMiniVSFS,
	probeExt4,
	probeXFS,
	probeFAT32,
	probeSwap,
}

// Detect identifies the filesystem from the leading bytes of an image.
func Detect(data []byte) (FS, error) {
	for _, probe := range probers {
		if fs := probe(data); fs != nil {
			return fs, nil
		}
	}
	return nil, fserrors.ErrFSNotFound
}

func probe(path string) (FS, error) {
	file, err := utils.OpenImage(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data := make([]byte, probeSize)
	n, err := io.ReadFull(file, data)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fserrors.IOError("read "+path, err)
	}

	return Detect(data[:n])
}

// Probe detects and returns filesystem information of the image at path.
func Probe(ctx context.Context, path string) (FS, error) {
	type result struct {
		fs  FS
		err error
	}

	resultCh := make(chan result, 1)
	go func() {
		fs, err := probe(path)
		resultCh <- result{fs, err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w; %v", fserrors.ErrCanceled, ctx.Err())
	case r := <-resultCh:
		return r.fs, r.err
	}
}
