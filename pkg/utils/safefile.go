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
	"os"
	"path/filepath"

	"github.com/minio/minivsfs/pkg/consts"
	"go.uber.org/multierr"
)

// SafeFile writes to a temporary file next to filename and renames it
// over filename on Close. Abort discards the temporary file.
type SafeFile struct {
	filename string
	tempFile *os.File
}

// Write implements io.Writer.
func (safeFile *SafeFile) Write(p []byte) (int, error) {
	return safeFile.tempFile.Write(p)
}

// Close syncs the temporary file and renames it to the target filename.
func (safeFile *SafeFile) Close() error {
	err := multierr.Append(safeFile.tempFile.Sync(), safeFile.tempFile.Close())
	if err != nil {
		return multierr.Append(err, os.Remove(safeFile.tempFile.Name()))
	}
	return os.Rename(safeFile.tempFile.Name(), safeFile.filename)
}

// Abort closes and removes the temporary file leaving filename untouched.
func (safeFile *SafeFile) Abort() error {
	return multierr.Append(safeFile.tempFile.Close(), os.Remove(safeFile.tempFile.Name()))
}

// NewSafeFile creates new SafeFile for filename.
func NewSafeFile(filename string) (*SafeFile, error) {
	tempFile, err := os.CreateTemp(filepath.Dir(filename), "."+filepath.Base(filename)+".tmp.")
	if err != nil {
		return nil, err
	}

	if err = tempFile.Chmod(consts.ImageFileMode); err != nil {
		return nil, multierr.Combine(err, tempFile.Close(), os.Remove(tempFile.Name()))
	}

	return &SafeFile{
		filename: filename,
		tempFile: tempFile,
	}, nil
}
