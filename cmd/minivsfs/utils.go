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

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/minio/minivsfs/pkg/consts"
	"github.com/minio/minivsfs/pkg/fs"
	fserrors "github.com/minio/minivsfs/pkg/fs/errors"
	"github.com/minio/minivsfs/pkg/image"
	"github.com/minio/minivsfs/pkg/utils"
)

const dot = "•"

var (
	bold   = color.New(color.Bold).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

func eprintf(quiet, asErr bool, format string, a ...interface{}) {
	if quiet {
		return
	}
	if asErr {
		fmt.Fprint(os.Stderr, red(bold("Error: ")))
	}
	fmt.Fprintf(os.Stderr, format, a...)
}

func printYAML(obj interface{}) error {
	y, err := utils.ToYAML(obj)
	if err != nil {
		return err
	}
	fmt.Println(y)
	return nil
}

func printJSON(obj interface{}) error {
	data, err := utils.ToJSON(obj)
	if err != nil {
		return err
	}
	fmt.Println(data)
	return nil
}

// printFormatted prints obj in the requested output format and reports
// whether it did so.
func printFormatted(obj interface{}) (bool, error) {
	switch outputFormat() {
	case "yaml":
		return true, printYAML(obj)
	case "json":
		return true, printJSON(obj)
	default:
		return false, nil
	}
}

func printableBytes(value uint64) string {
	if value == 0 {
		return "-"
	}
	return humanize.IBytes(value)
}

func newTableWriter(header table.Row, sortBy []table.SortBy) table.Writer {
	writer := table.NewWriter()
	writer.SetOutputMirror(os.Stdout)
	writer.AppendHeader(header)
	writer.SortBy(sortBy)
	writer.SetStyle(table.StyleLight)
	writer.Style().Format.Header = text.FormatUpper
	writer.Style().Options.SeparateColumns = false
	return writer
}

// loadImage loads the image at path. A foreign filesystem is reported by
// name instead of as a bare magic number mismatch.
func loadImage(ctx context.Context, path string) (*image.Image, error) {
	img, err := image.LoadFile(path)
	if err == nil || !errors.Is(err, fserrors.ErrBadMagic) {
		return img, err
	}

	if foreign, probeErr := fs.Probe(ctx, path); probeErr == nil {
		return nil, fmt.Errorf("%w; %v holds %v, not %v", err, path, foreign.Type(), consts.AppName)
	}
	return nil, err
}
