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

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	quietFlag        = "quiet"
	metricsFileFlag  = "metrics-file"
	outputFormatFlag = "output"
	imageFlag        = "image"
	atomicFlag       = "atomic"
)

var outputFormatValues = []string{"yaml", "json"}

// image whose usage gauges go to --metrics-file; set by the command run.
var metricsImage string

func addQuietFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().Bool(quietFlag, false, "Suppress printing messages except errors")
}

func addMetricsFileFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().String(metricsFileFlag, "", "Write Prometheus metrics to this file after the command")
}

func addOutputFormatFlag(cmd *cobra.Command) {
	cmd.Flags().StringP(outputFormatFlag, "o", "", fmt.Sprintf("Output format; one of: %v", outputFormatValues))
}

func addImageFlag(cmd *cobra.Command, usage string) {
	cmd.Flags().String(imageFlag, "", usage)
}

func addAtomicFlag(cmd *cobra.Command) {
	cmd.Flags().Bool(atomicFlag, false, "Write through a temporary file renamed into place")
}

func quiet() bool {
	return viper.GetBool(quietFlag)
}

func outputFormat() string {
	return viper.GetString(outputFormatFlag)
}

func requiredString(name string) (string, error) {
	value := viper.GetString(name)
	if value == "" {
		return "", fmt.Errorf("--%v must be provided", name)
	}
	return value, nil
}

func validateOutputFormat(cmd *cobra.Command) error {
	// add uses --output for the destination image.
	if flag := cmd.Flags().Lookup(outputFormatFlag); flag == nil || flag.Shorthand != "o" {
		return nil
	}
	switch outputFormat() {
	case "", "yaml", "json":
		return nil
	default:
		return fmt.Errorf("unknown output format %v; one of: %v", outputFormat(), outputFormatValues)
	}
}
