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
	"github.com/minio/minivsfs/pkg/image"
	"github.com/minio/minivsfs/pkg/metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	inputFlag  = "input"
	outputFlag = "output"
	fileFlag   = "file"

	// add --output shares its flag name with -o/--output of other
	// commands, so it is bound under its own key and env var.
	addOutputKey = "add-output"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a host file to the root directory of a volume image.",
	Long: `Add a host file to the root directory of a volume image.

The input image is read fully into memory, the file is added and the whole
image is written to the output path, which may be the input path. Running
two adds against the same output at the same time loses one of them.`,
	Example: strings.ReplaceAll(
		`# Add hello.txt into a copy of volume.img
$ {APP_NAME} add --input volume.img --output volume-1.img --file hello.txt

# Add hello.txt in place
$ {APP_NAME} add --input volume.img --output volume.img --file hello.txt --atomic`,
		`{APP_NAME}`,
		consts.AppName,
	),
	Args: cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		return addMain(c)
	},
}

func init() {
	addCmd.Flags().String(inputFlag, "", "Path of the source image")
	addCmd.Flags().String(outputFlag, "", "Path of the destination image; defaults to --input")
	addCmd.Flags().String(fileFlag, "", "Path of the host file to add")
	addAtomicFlag(addCmd)

	viper.BindPFlag(addOutputKey, addCmd.Flags().Lookup(outputFlag))
}

func addMain(c *cobra.Command) error {
	input, err := requiredString(inputFlag)
	if err != nil {
		return err
	}
	filePath, err := requiredString(fileFlag)
	if err != nil {
		return err
	}
	output := viper.GetString(addOutputKey)
	if output == "" {
		output = input
	}
	metricsImage = output

	result, err := image.InjectFile(input, output, filePath, image.Options{
		Atomic: viper.GetBool(atomicFlag),
	})
	metrics.ObserveInject(result, err)
	if err != nil {
		return err
	}

	if quiet() {
		fmt.Println(result.Inode)
		return nil
	}

	fmt.Printf("%v %v (%v) as inode %v in %v\n",
		green("Added"),
		bold(result.Name),
		printableBytes(result.Size),
		bold(result.Inode),
		output,
	)
	fmt.Printf("%v blocks %v, digest %v\n", yellow(dot), result.Blocks, result.Digest)
	return nil
}
