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

package utils

import (
	"io"
	"os"

	"github.com/minio/minivsfs/pkg/consts"
	fserrors "github.com/minio/minivsfs/pkg/fs/errors"
	"github.com/mitchellh/go-homedir"
	"go.uber.org/multierr"
)

// ExpandPath expands a leading ~ in path to the user home directory.
func ExpandPath(path string) (string, error) {
	return homedir.Expand(path)
}

// ReadFile reads the whole content of the host file at path.
func ReadFile(path string) ([]byte, error) {
	expanded, err := ExpandPath(path)
	if err != nil {
		return nil, fserrors.IOError("expand path "+path, err)
	}

	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fserrors.IOError("read file "+path, err)
	}
	return data, nil
}

// OpenImage opens the image file at path for reading.
func OpenImage(path string) (*os.File, error) {
	expanded, err := ExpandPath(path)
	if err != nil {
		return nil, fserrors.IOError("expand path "+path, err)
	}

	file, err := os.Open(expanded)
	if err != nil {
		return nil, fserrors.IOError("open image "+path, err)
	}
	return file, nil
}

// ImageWriter is the destination of a whole-image store.
type ImageWriter interface {
	io.Writer

	// Close makes the written image durable at its path.
	Close() error

	// Abort releases the writer after a failed store.
	Abort() error
}

type plainFile struct {
	*os.File
}

func (f plainFile) Close() error {
	return multierr.Append(f.File.Sync(), f.File.Close())
}

// Abort closes the file and leaves whatever was written in place.
func (f plainFile) Abort() error {
	return f.File.Close()
}

// CreateImage creates or truncates the image file at path. If atomic is
// set, the image is written through a SafeFile and replaces path only on
// a successful Close.
func CreateImage(path string, atomic bool) (ImageWriter, error) {
	expanded, err := ExpandPath(path)
	if err != nil {
		return nil, fserrors.IOError("expand path "+path, err)
	}

	if atomic {
		safeFile, err := NewSafeFile(expanded)
		if err != nil {
			return nil, fserrors.IOError("create image "+path, err)
		}
		return safeFile, nil
	}

	file, err := os.OpenFile(expanded, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, consts.ImageFileMode)
	if err != nil {
		return nil, fserrors.IOError("create image "+path, err)
	}
	return plainFile{file}, nil
}
