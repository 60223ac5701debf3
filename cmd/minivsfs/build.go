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
	"fmt"
	"strings"

	"github.com/minio/minivsfs/pkg/consts"
	"github.com/minio/minivsfs/pkg/layout"
	"github.com/minio/minivsfs/pkg/metrics"
	"github.com/minio/minivsfs/pkg/mkfs"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	sizeKiBFlag = "size-kib"
	inodesFlag  = "inodes"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build an empty " + consts.AppPrettyName + " volume image.",
	Example: strings.ReplaceAll(
		`# Build the smallest volume
$ {APP_NAME} build --image volume.img --size-kib 180 --inodes 128

# Build through a temporary file renamed into place
$ {APP_NAME} build --image volume.img --size-kib 4096 --inodes 512 --atomic`,
		`{APP_NAME}`,
		consts.AppName,
	),
	Args: cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		return buildMain(c)
	},
}

func init() {
	addImageFlag(buildCmd, "Path of the image to create or overwrite")
	buildCmd.Flags().Uint32(sizeKiBFlag, 0, fmt.Sprintf("Volume size in KiB; multiple of 4 in [%v, %v]", layout.MinSizeKiB, layout.MaxSizeKiB))
	buildCmd.Flags().Uint32(inodesFlag, 0, fmt.Sprintf("Number of inodes in [%v, %v]", layout.MinInodes, layout.MaxInodes))
	addAtomicFlag(buildCmd)
	addOutputFormatFlag(buildCmd)
}

func buildMain(c *cobra.Command) error {
	path, err := requiredString(imageFlag)
	if err != nil {
		return err
	}
	metricsImage = path

	l, err := mkfs.BuildFile(path, viper.GetUint32(sizeKiBFlag), viper.GetUint32(inodesFlag), mkfs.Options{
		Atomic: viper.GetBool(atomicFlag),
	})
	metrics.ObserveBuild(err)
	if err != nil {
		return err
	}

	if printed, err := printFormatted(l); printed || err != nil {
		return err
	}

	if !quiet() {
		fmt.Printf("%v %v: %v, %v inodes, %v data blocks\n",
			green("Built"),
			bold(path),
			printableBytes(uint64(l.SizeKiB)*1024),
			l.InodeCount,
			l.DataRegionBlocks,
		)
	}
	return nil
}
