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

// Package image loads, edits and stores whole MiniVSFS volume images.
//
// Every edit is a full load, in-memory mutation and full store cycle. There
// is no locking: two processes editing the same destination path at the
// same time race at the filesystem level and one of the edits is lost.
package image

import (
	"errors"
	"fmt"
	"io"

	"github.com/minio/minivsfs/pkg/bitmap"
	fserrors "github.com/minio/minivsfs/pkg/fs/errors"
	"github.com/minio/minivsfs/pkg/utils"
	"github.com/minio/minivsfs/pkg/volume"
	"k8s.io/klog/v2"
)

// Image denotes a volume loaded into memory.
type Image struct {
	SuperBlock  *volume.SuperBlock
	InodeBitmap bitmap.Bitmap
	DataBitmap  bitmap.Bitmap
	InodeTable  []byte
	DataRegion  []byte
}

func readRegion(reader io.Reader, name string, blocks uint64) ([]byte, error) {
	data := make([]byte, blocks*volume.BlockSize)
	if _, err := io.ReadFull(reader, data); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w; unable to read %v", fserrors.ErrShortImage, name)
		}
		return nil, fserrors.IOError("read "+name, err)
	}
	return data, nil
}

// Load reads a whole image from reader. Only the magic number is checked;
// region offsets and lengths are taken from the superblock as is.
func Load(reader io.Reader) (*Image, error) {
	sb, err := volume.Probe(reader)
	if err != nil {
		return nil, err
	}

	img := &Image{SuperBlock: sb}
	if img.InodeBitmap, err = readRegion(reader, "inode bitmap", sb.InodeBitmapBlocks); err != nil {
		return nil, err
	}
	if img.DataBitmap, err = readRegion(reader, "data bitmap", sb.DataBitmapBlocks); err != nil {
		return nil, err
	}
	if img.InodeTable, err = readRegion(reader, "inode table", sb.InodeTableBlocks); err != nil {
		return nil, err
	}
	if img.DataRegion, err = readRegion(reader, "data region", sb.DataRegionBlocks); err != nil {
		return nil, err
	}

	klog.V(5).InfoS("image loaded", "totalBlocks", sb.TotalBlocks, "inodes", sb.InodeCount, "dataRegionStart", sb.DataRegionStart)
	return img, nil
}

// LoadFile loads the image at path. The file is closed before returning.
func LoadFile(path string) (*Image, error) {
	file, err := utils.OpenImage(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Load(file)
}

// WriteTo writes the whole image to w in on-disk order.
func (img *Image) WriteTo(w io.Writer) (n int64, err error) {
	regions := []struct {
		name string
		data []byte
	}{
		{"superblock", img.SuperBlock.MarshalBlock()},
		{"inode bitmap", img.InodeBitmap},
		{"data bitmap", img.DataBitmap},
		{"inode table", img.InodeTable},
		{"data region", img.DataRegion},
	}

	for _, region := range regions {
		written, err := w.Write(region.data)
		n += int64(written)
		if err != nil {
			return n, fserrors.IOError("write "+region.name, err)
		}
	}

	return n, nil
}

// Store writes the image to path.
func (img *Image) Store(path string, atomic bool) error {
	writer, err := utils.CreateImage(path, atomic)
	if err != nil {
		return err
	}

	if _, err = img.WriteTo(writer); err != nil {
		if abortErr := writer.Abort(); abortErr != nil {
			klog.ErrorS(abortErr, "unable to release image", "path", path)
		}
		return err
	}

	if err = writer.Close(); err != nil {
		return fserrors.IOError("close image "+path, err)
	}

	return nil
}

// Inode returns inode number.
func (img *Image) Inode(number uint32) (*volume.Inode, error) {
	return volume.ReadInode(img.InodeTable, number)
}

// Block returns the data region block at absolute block number. The
// returned slice aliases the image.
func (img *Image) Block(number uint32) ([]byte, error) {
	start := img.SuperBlock.DataRegionStart
	if uint64(number) < start || uint64(number)-start >= img.SuperBlock.DataRegionBlocks {
		return nil, fmt.Errorf("%w; block %v is outside of data region", fserrors.ErrIntegrity, number)
	}
	offset := (uint64(number) - start) * volume.BlockSize
	if offset+volume.BlockSize > uint64(len(img.DataRegion)) {
		return nil, fmt.Errorf("%w; block %v is outside of data region", fserrors.ErrIntegrity, number)
	}
	return img.DataRegion[offset : offset+volume.BlockSize], nil
}

// RootDirBlock returns the first block of the root directory.
func (img *Image) RootDirBlock() ([]byte, error) {
	root, err := img.Inode(volume.RootInode)
	if err != nil {
		return nil, err
	}
	return img.Block(root.Direct[0])
}
