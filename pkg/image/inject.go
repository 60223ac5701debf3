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
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	fserrors "github.com/minio/minivsfs/pkg/fs/errors"
	"github.com/minio/minivsfs/pkg/utils"
	"github.com/minio/minivsfs/pkg/volume"
	"github.com/minio/sha256-simd"
	"github.com/opencontainers/go-digest"
	"k8s.io/klog/v2"
)

// InjectResult denotes the outcome of a successful injection.
type InjectResult struct {
	Name   string        `json:"name"`
	Inode  uint32        `json:"inode"`
	Size   uint64        `json:"size"`
	Blocks []uint32      `json:"blocks"`
	Slot   int           `json:"slot"`
	Digest digest.Digest `json:"digest"`
}

// BlocksNeeded returns the number of data blocks holding size bytes.
func BlocksNeeded(size uint64) uint64 {
	return (size + volume.BlockSize - 1) / volume.BlockSize
}

// DisplayName returns the name a host file is stored under.
func DisplayName(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return filepath.Base(path)
}

// ValidateFile checks name and size of a file to be injected.
func ValidateFile(name string, size uint64) error {
	switch {
	case size == 0:
		return fserrors.ErrEmptyFile
	case len(name) > volume.MaxNameLen:
		return fmt.Errorf("%w (max %v characters)", fserrors.ErrNameTooLong, volume.MaxNameLen)
	case name == "", name == ".", name == "..", strings.ContainsRune(name, 0):
		return fmt.Errorf("%w %q", fserrors.ErrInvalidName, name)
	}

	if blocks := BlocksNeeded(size); blocks > volume.DirectMax {
		return fmt.Errorf("%w (needs %v blocks, max %v)", fserrors.ErrFileTooLarge, blocks, volume.DirectMax)
	}

	return nil
}

func (img *Image) findFreeDirSlot(block []byte) (int, error) {
	for slot := 2; slot < volume.DirEntriesPerBlock; slot++ {
		entry, err := volume.ReadDirEntry(block, slot)
		if err != nil {
			return 0, err
		}
		if entry.Free() {
			return slot, nil
		}
	}
	return 0, fserrors.ErrDirectoryFull
}

// Inject stores data as a new regular file called name in the root
// directory. Inodes, data blocks and the directory slot are all reserved
// before anything is written, so on error img is left unchanged.
func (img *Image) Inject(name string, data []byte, now time.Time) (*InjectResult, error) {
	size := uint64(len(data))
	if err := ValidateFile(name, size); err != nil {
		return nil, err
	}
	blocksNeeded := BlocksNeeded(size)
	sb := img.SuperBlock

	inodeBitmap := img.InodeBitmap.Clone()
	inodeBit, err := inodeBitmap.FindFree(uint32(sb.InodeCount))
	if err != nil {
		return nil, fserrors.ErrNoFreeInode
	}
	inodeBitmap.Set(inodeBit)
	inodeNumber := inodeBit + 1

	dataBitmap := img.DataBitmap.Clone()
	blocks := make([]uint32, 0, blocksNeeded)
	for i := uint64(0); i < blocksNeeded; i++ {
		bit, err := dataBitmap.FindFree(uint32(sb.DataRegionBlocks))
		if err != nil {
			return nil, fmt.Errorf("%w (need %v, found %v)", fserrors.ErrNoFreeDataBlock, blocksNeeded, i)
		}
		dataBitmap.Set(bit)
		blocks = append(blocks, uint32(sb.DataRegionStart)+bit)
		klog.V(5).InfoS("data block reserved", "block", blocks[i], "bit", bit)
	}

	root, err := img.Inode(volume.RootInode)
	if err != nil {
		return nil, err
	}
	dirBlock, err := img.Block(root.Direct[0])
	if err != nil {
		return nil, err
	}
	slot, err := img.findFreeDirSlot(dirBlock)
	if err != nil {
		return nil, err
	}

	// All reservations succeeded; commit.
	inode := volume.NewInode(volume.ModeFile, 1, size, now)
	copy(inode.Direct[:], blocks)
	inode.Finalize()
	if err := volume.WriteInode(img.InodeTable, inodeNumber, inode); err != nil {
		return nil, err
	}

	if err := volume.WriteDirEntry(dirBlock, slot, volume.NewDirEntry(inodeNumber, volume.TypeFile, name)); err != nil {
		return nil, err
	}

	root.Links++
	root.SizeBytes += volume.DirEntrySize
	root.Mtime = uint64(now.Unix())
	root.Finalize()
	if err := volume.WriteInode(img.InodeTable, volume.RootInode, root); err != nil {
		return nil, err
	}

	for i, number := range blocks {
		// reserved above from the data region
		block, _ := img.Block(number)
		n := copy(block, data[uint64(i)*volume.BlockSize:])
		for j := n; j < len(block); j++ {
			block[j] = 0
		}
	}

	img.InodeBitmap = inodeBitmap
	img.DataBitmap = dataBitmap
	sb.Touch(now)

	sum := sha256.Sum256(data)
	klog.V(3).InfoS("file injected", "name", name, "inode", inodeNumber, "size", size, "blocks", blocks, "slot", slot)

	return &InjectResult{
		Name:   name,
		Inode:  inodeNumber,
		Size:   size,
		Blocks: blocks,
		Slot:   slot,
		Digest: digest.NewDigestFromEncoded(digest.SHA256, hex.EncodeToString(sum[:])),
	}, nil
}

// Options denotes options of InjectFile.
type Options struct {
	// Atomic writes the output through a temporary file renamed into place.
	Atomic bool

	// Now returns the modification timestamp; defaults to time.Now.
	Now func() time.Time
}

// InjectFile adds the host file at filePath to the image at input and
// writes the result to output. input and output may be the same path;
// input is fully read and closed before output is opened.
func InjectFile(input, output, filePath string, opts Options) (*InjectResult, error) {
	name := DisplayName(filePath)
	if len(name) > volume.MaxNameLen {
		return nil, fmt.Errorf("%w (max %v characters)", fserrors.ErrNameTooLong, volume.MaxNameLen)
	}

	data, err := utils.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	if err := ValidateFile(name, uint64(len(data))); err != nil {
		return nil, err
	}

	img, err := LoadFile(input)
	if err != nil {
		return nil, err
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	result, err := img.Inject(name, data, now())
	if err != nil {
		return nil, err
	}

	if err := img.Store(output, opts.Atomic); err != nil {
		return nil, err
	}

	return result, nil
}
