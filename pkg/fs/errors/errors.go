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

// Package errors defines the error kinds returned by volume operations.
// Every specific error wraps exactly one kind so callers can classify
// failures with errors.Is.
package errors

import (
	"errors"
	"fmt"
)

// Error kinds.
var (
	// ErrValidation denotes bad caller input rejected before any allocation.
	ErrValidation = errors.New("validation failed")

	// ErrCapacity denotes exhaustion of inodes, data blocks or directory slots.
	ErrCapacity = errors.New("capacity exhausted")

	// ErrIntegrity denotes an image which failed an integrity check.
	ErrIntegrity = errors.New("integrity check failed")

	// ErrIO denotes a failure of the underlying storage.
	ErrIO = errors.New("I/O error")
)

// Validation errors.
var (
	ErrInvalidSize       = fmt.Errorf("%w: invalid volume size", ErrValidation)
	ErrInvalidInodeCount = fmt.Errorf("%w: invalid inode count", ErrValidation)
	ErrTooManyInodes     = fmt.Errorf("%w: too many inodes for the given size", ErrValidation)
	ErrNoDataRegion      = fmt.Errorf("%w: not enough space for data region", ErrValidation)
	ErrEmptyFile         = fmt.Errorf("%w: file is empty", ErrValidation)
	ErrNameTooLong       = fmt.Errorf("%w: filename too long", ErrValidation)
	ErrInvalidName       = fmt.Errorf("%w: invalid filename", ErrValidation)
	ErrFileTooLarge      = fmt.Errorf("%w: file too large", ErrValidation)
)

// Capacity errors.
var (
	ErrNoFreeInode     = fmt.Errorf("%w: no free inodes available", ErrCapacity)
	ErrNoFreeDataBlock = fmt.Errorf("%w: not enough free data blocks", ErrCapacity)
	ErrDirectoryFull   = fmt.Errorf("%w: no free directory entries in root directory", ErrCapacity)
)

// Integrity errors.
var (
	ErrBadMagic         = fmt.Errorf("%w: invalid file system magic number", ErrIntegrity)
	ErrChecksumMismatch = fmt.Errorf("%w: checksum mismatch", ErrIntegrity)
	ErrShortImage       = fmt.Errorf("%w: image is shorter than its superblock declares", ErrIntegrity)
	ErrFSNotFound       = fmt.Errorf("%w: filesystem not found", ErrIntegrity)
)

// ErrCanceled denotes canceled operation.
var ErrCanceled = errors.New("canceled")

// IOError wraps err as an ErrIO failure of the named operation.
func IOError(op string, err error) error {
	return fmt.Errorf("%w: unable to %v; %w", ErrIO, op, err)
}

// Kind returns the kind name of err used as metric label. It returns ""
// for nil and "unknown" for errors of no known kind.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrCapacity):
		return "capacity"
	case errors.Is(err, ErrIntegrity):
		return "integrity"
	case errors.Is(err, ErrIO):
		return "io"
	case errors.Is(err, ErrCanceled):
		return "canceled"
	default:
		return "unknown"
	}
}
