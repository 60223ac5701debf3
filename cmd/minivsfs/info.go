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
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/minio/minivsfs/pkg/consts"
	"github.com/minio/minivsfs/pkg/image"
	"github.com/minio/minivsfs/pkg/layout"
	"github.com/minio/minivsfs/pkg/volume"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show geometry and usage of a volume image.",
	Example: strings.ReplaceAll(
		`# Show volume.img
$ {APP_NAME} info --image volume.img

# Show volume.img as YAML
$ {APP_NAME} info --image volume.img -o yaml`,
		`{APP_NAME}`,
		consts.AppName,
	),
	Args: cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		return infoMain(c.Context())
	},
}

func init() {
	addImageFlag(infoCmd, "Path of the image")
	addOutputFormatFlag(infoCmd)
}

type imageInfo struct {
	Image         string          `json:"image"`
	Version       uint32          `json:"version"`
	BlockSize     uint32          `json:"blockSize"`
	ChecksumValid bool            `json:"checksumValid"`
	ModTime       time.Time       `json:"modTime"`
	Regions       []layout.Region `json:"regions"`
	Usage         image.Stats     `json:"usage"`
}

func getImageInfo(path string, img *image.Image) imageInfo {
	sb := img.SuperBlock
	return imageInfo{
		Image:         path,
		Version:       sb.Version,
		BlockSize:     sb.BlockSize,
		ChecksumValid: sb.Valid(),
		ModTime:       sb.ModTime(),
		Regions:       layout.FromSuperBlock(sb).Regions(),
		Usage:         img.Stats(),
	}
}

func infoMain(ctx context.Context) error {
	path, err := requiredString(imageFlag)
	if err != nil {
		return err
	}
	metricsImage = path

	img, err := loadImage(ctx, path)
	if err != nil {
		return err
	}
	info := getImageInfo(path, img)

	if printed, err := printFormatted(info); printed || err != nil {
		return err
	}

	checksum := green("valid")
	if !info.ChecksumValid {
		checksum = red("mismatch")
	}
	fmt.Printf("%v %v version %v, %v blocks of %v, modified %v, checksum %v\n",
		dot,
		bold(path),
		info.Version,
		info.Usage.TotalBlocks,
		printableBytes(uint64(info.BlockSize)),
		info.ModTime.Format(time.RFC3339),
		checksum,
	)

	writer := newTableWriter(table.Row{"REGION", "START", "BLOCKS", "SIZE"}, nil)
	for _, region := range info.Regions {
		writer.AppendRow(table.Row{region.Name, region.Start, region.Blocks, printableBytes(region.Blocks * volume.BlockSize)})
	}
	writer.Render()

	usage := info.Usage
	writer = newTableWriter(table.Row{"RESOURCE", "TOTAL", "USED", "FREE"}, nil)
	writer.AppendRow(table.Row{"inodes", usage.InodeCount, usage.UsedInodes, usage.FreeInodes()})
	writer.AppendRow(table.Row{"data blocks", usage.DataRegionBlocks, usage.UsedDataBlocks, usage.FreeDataBlocks()})
	writer.AppendRow(table.Row{"root entries", volume.DirEntriesPerBlock, usage.DirEntries, usage.FreeDirSlots})
	writer.Render()

	return nil
}
