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

// Package mkfs formats new, empty MiniVSFS volume images.
package mkfs

import (
	"fmt"
	"io"
	"time"

	"github.com/minio/minivsfs/pkg/bitmap"
	fserrors "github.com/minio/minivsfs/pkg/fs/errors"
	"github.com/minio/minivsfs/pkg/layout"
	"github.com/minio/minivsfs/pkg/utils"
	"github.com/minio/minivsfs/pkg/volume"
	"k8s.io/klog/v2"
)

// NewRootInode returns the finalized root directory inode whose only
// block is firstDataBlock.
func NewRootInode(firstDataBlock uint32, now time.Time) *volume.Inode {
	root := volume.NewInode(volume.ModeDir, 2, 2*volume.DirEntrySize, now)
	root.Direct[0] = firstDataBlock
	root.Finalize()
	return root
}

// NewRootDirBlock returns the first root directory block holding "." and "..".
func NewRootDirBlock() []byte {
	block := make([]byte, volume.BlockSize)
	// slots are in range of a full block
	_ = volume.WriteDirEntry(block, 0, volume.NewDirEntry(volume.RootInode, volume.TypeDir, "."))
	_ = volume.WriteDirEntry(block, 1, volume.NewDirEntry(volume.RootInode, volume.TypeDir, ".."))
	return block
}

type blockWriter struct {
	w       io.Writer
	written uint64
}

func (bw *blockWriter) write(what string, block []byte) error {
	if _, err := bw.w.Write(block); err != nil {
		return fserrors.IOError(fmt.Sprintf("write %v (block %v)", what, bw.written), err)
	}
	bw.written++
	return nil
}

// Build writes a new empty volume described by l to w. Blocks are written
// once, in order; on error w holds an incomplete image.
func Build(w io.Writer, l *layout.Layout, now time.Time) error {
	sb := l.SuperBlock()
	sb.MtimeEpoch = uint64(now.Unix())
	sb.Finalize()

	root := NewRootInode(uint32(l.DataRegionStart), now)

	bw := &blockWriter{w: w}

	if err := bw.write("superblock", sb.MarshalBlock()); err != nil {
		return err
	}

	inodeBitmap := make(bitmap.Bitmap, l.InodeBitmapBlocks*volume.BlockSize)
	inodeBitmap.Set(volume.RootInode - 1)
	if err := bw.write("inode bitmap", inodeBitmap); err != nil {
		return err
	}

	dataBitmap := make(bitmap.Bitmap, l.DataBitmapBlocks*volume.BlockSize)
	dataBitmap.Set(0)
	if err := bw.write("data bitmap", dataBitmap); err != nil {
		return err
	}

	for i := uint64(0); i < l.InodeTableBlocks; i++ {
		block := make([]byte, volume.BlockSize)
		if i == 0 {
			if err := volume.WriteInode(block, volume.RootInode, root); err != nil {
				return err
			}
		}
		if err := bw.write("inode table", block); err != nil {
			return err
		}
	}

	zero := make([]byte, volume.BlockSize)
	for i := uint64(0); i < l.DataRegionBlocks; i++ {
		block := zero
		if i == 0 {
			block = NewRootDirBlock()
		}
		if err := bw.write("data region", block); err != nil {
			return err
		}
	}

	klog.V(3).InfoS("volume built", "blocks", bw.written, "inodes", l.InodeCount, "dataRegionStart", l.DataRegionStart)
	return nil
}

// Options denotes options of BuildFile.
type Options struct {
	// Atomic writes the image through a temporary file renamed into place.
	Atomic bool

	// Now returns the build timestamp; defaults to time.Now.
	Now func() time.Time
}

// BuildFile computes the layout for sizeKiB and inodeCount and writes a new
// volume to path.
func BuildFile(path string, sizeKiB, inodeCount uint32, opts Options) (l *layout.Layout, err error) {
	if l, err = layout.Calculate(sizeKiB, inodeCount); err != nil {
		return nil, err
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	writer, err := utils.CreateImage(path, opts.Atomic)
	if err != nil {
		return nil, err
	}

	if err = Build(writer, l, now()); err != nil {
		if abortErr := writer.Abort(); abortErr != nil {
			klog.ErrorS(abortErr, "unable to release image", "path", path)
		}
		return nil, err
	}

	if err = writer.Close(); err != nil {
		return nil, fserrors.IOError("close image "+path, err)
	}

	klog.V(3).InfoS("image created", "path", path, "sizeKiB", sizeKiB, "inodes", inodeCount)
	return l, nil
}
