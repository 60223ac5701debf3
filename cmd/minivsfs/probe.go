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
	"fmt"
	"strings"

	"github.com/minio/minivsfs/pkg/consts"
	"github.com/minio/minivsfs/pkg/fs"
	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Identify the filesystem held by an image file.",
	Example: strings.ReplaceAll(
		`# Identify disk.img
$ {APP_NAME} probe --image disk.img`,
		`{APP_NAME}`,
		consts.AppName,
	),
	Args: cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		return probeMain(c.Context())
	},
}

func init() {
	addImageFlag(probeCmd, "Path of the image")
	addOutputFormatFlag(probeCmd)
}

type probeResult struct {
	Image         string `json:"image"`
	Type          string `json:"type"`
	TotalCapacity uint64 `json:"totalCapacity"`
}

func probeMain(ctx context.Context) error {
	path, err := requiredString(imageFlag)
	if err != nil {
		return err
	}

	filesystem, err := fs.Probe(ctx, path)
	if err != nil {
		return fmt.Errorf("unable to probe %v; %w", path, err)
	}
	result := probeResult{Image: path, Type: filesystem.Type(), TotalCapacity: filesystem.TotalCapacity()}

	if printed, err := printFormatted(result); printed || err != nil {
		return err
	}

	fmt.Printf("%v %v: %v, %v\n", dot, bold(path), result.Type, printableBytes(result.TotalCapacity))
	return nil
}
