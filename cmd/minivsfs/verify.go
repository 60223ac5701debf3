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
	"strings"

	"github.com/minio/minivsfs/pkg/consts"
	fserrors "github.com/minio/minivsfs/pkg/fs/errors"
	"github.com/minio/minivsfs/pkg/image"
	"github.com/minio/minivsfs/pkg/metrics"
	"github.com/spf13/cobra"
)

var errVerifyFailed = errors.New("verification failed")

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check checksums and allocation of a volume image.",
	Example: strings.ReplaceAll(
		`# Verify volume.img
$ {APP_NAME} verify --image volume.img`,
		`{APP_NAME}`,
		consts.AppName,
	),
	Args: cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		return verifyMain(c.Context())
	},
}

func init() {
	addImageFlag(verifyCmd, "Path of the image")
	addOutputFormatFlag(verifyCmd)
}

type verifyResult struct {
	Image    string          `json:"image"`
	Problems []image.Problem `json:"problems"`
}

func verifyMain(ctx context.Context) error {
	path, err := requiredString(imageFlag)
	if err != nil {
		return err
	}
	metricsImage = path

	img, err := loadImage(ctx, path)
	if err != nil {
		metrics.ObserveError("verify", err)
		return err
	}
	problems := img.Verify()

	printed, err := printFormatted(verifyResult{Image: path, Problems: problems})
	if err != nil {
		return err
	}

	if len(problems) == 0 {
		if !printed && !quiet() {
			fmt.Printf("%v %v\n", green("OK"), path)
		}
		return nil
	}

	if !printed && !quiet() {
		for _, problem := range problems {
			fmt.Printf("%v %v\n", red(dot), problem)
		}
	}

	kind := fserrors.ErrIntegrity
	for _, problem := range problems {
		if problem.Err == fserrors.ErrChecksumMismatch {
			kind = fserrors.ErrChecksumMismatch
			break
		}
	}
	err = fmt.Errorf("%w; %v problem(s) found in %v; %w", errVerifyFailed, len(problems), path, kind)
	metrics.ObserveError("verify", err)
	return err
}
