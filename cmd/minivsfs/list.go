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

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/minio/minivsfs/pkg/consts"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the root directory of a volume image.",
	Example: strings.ReplaceAll(
		`# List files in volume.img
$ {APP_NAME} list --image volume.img

# List files in volume.img as JSON
$ {APP_NAME} list --image volume.img -o json`,
		`{APP_NAME}`,
		consts.AppName,
	),
	Args: cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		return listMain(c.Context())
	},
}

func init() {
	addImageFlag(listCmd, "Path of the image")
	addOutputFormatFlag(listCmd)
}

func listMain(ctx context.Context) error {
	path, err := requiredString(imageFlag)
	if err != nil {
		return err
	}
	metricsImage = path

	img, err := loadImage(ctx, path)
	if err != nil {
		return err
	}
	entries, err := img.List()
	if err != nil {
		return err
	}

	if printed, err := printFormatted(entries); printed || err != nil {
		return err
	}

	writer := newTableWriter(
		table.Row{"SLOT", "INODE", "TYPE", "NAME", "SIZE"},
		[]table.SortBy{
			{
				Name: "SLOT",
				Mode: table.AscNumeric,
			},
		},
	)
	for _, entry := range entries {
		writer.AppendRow(table.Row{entry.Slot, entry.Inode, entry.Type, entry.Name, printableBytes(entry.Size)})
	}

	if writer.Length() == 0 {
		if !quiet() {
			fmt.Println("No entries found")
		}
		return nil
	}

	writer.Render()
	return nil
}
