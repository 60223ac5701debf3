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
	"strings"

	"github.com/minio/minivsfs/pkg/consts"
	"github.com/minio/minivsfs/pkg/metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const addressFlag = "address"

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Serve usage metrics of a volume image over HTTP.",
	Example: strings.ReplaceAll(
		`# Serve metrics of volume.img at http://localhost:9090/metrics
$ {APP_NAME} metrics --image volume.img --address :9090`,
		`{APP_NAME}`,
		consts.AppName,
	),
	Args: cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		return metricsMain(c.Context())
	},
}

func init() {
	addImageFlag(metricsCmd, "Path of the image")
	metricsCmd.Flags().String(addressFlag, ":9090", "Listen address of the metrics server")
}

func metricsMain(ctx context.Context) error {
	path, err := requiredString(imageFlag)
	if err != nil {
		return err
	}
	metricsImage = path

	return metrics.ServeMetrics(ctx, path, viper.GetString(addressFlag))
}
