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

package metrics

import (
	"github.com/minio/minivsfs/pkg/consts"
	"github.com/minio/minivsfs/pkg/image"
	"github.com/minio/minivsfs/pkg/volume"
	"github.com/prometheus/client_golang/prometheus"
	"k8s.io/klog/v2"
)

type imageCollector struct {
	path string
	load func(path string) (*image.Image, error)

	up               *prometheus.Desc
	inodesTotal      *prometheus.Desc
	inodesUsed       *prometheus.Desc
	dataBlocksTotal  *prometheus.Desc
	dataBlocksUsed   *prometheus.Desc
	dirEntries       *prometheus.Desc
	bytesTotal       *prometheus.Desc
	lastModified     *prometheus.Desc
	integrityProblem *prometheus.Desc
}

func newDesc(name, help string) *prometheus.Desc {
	return prometheus.NewDesc(
		prometheus.BuildFQName(consts.MetricsNamespace, "image", name),
		help,
		[]string{"image"}, nil,
	)
}

func newImageCollector(path string) *imageCollector {
	return &imageCollector{
		path:             path,
		load:             image.LoadFile,
		up:               newDesc("up", "Whether the image could be loaded"),
		inodesTotal:      newDesc("inodes_total", "Total number of inodes"),
		inodesUsed:       newDesc("inodes_used", "Number of allocated inodes"),
		dataBlocksTotal:  newDesc("data_blocks_total", "Total number of data region blocks"),
		dataBlocksUsed:   newDesc("data_blocks_used", "Number of allocated data region blocks"),
		dirEntries:       newDesc("dir_entries", "Number of used root directory entries"),
		bytesTotal:       newDesc("bytes_total", "Total size of the image in bytes"),
		lastModified:     newDesc("last_modified_seconds", "Last modify time of the image"),
		integrityProblem: newDesc("integrity_problems", "Number of problems found by verification"),
	}
}

// Describe sends the super set of all possible descriptors of metrics
func (c *imageCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.up
	ch <- c.inodesTotal
	ch <- c.inodesUsed
	ch <- c.dataBlocksTotal
	ch <- c.dataBlocksUsed
	ch <- c.dirEntries
	ch <- c.bytesTotal
	ch <- c.lastModified
	ch <- c.integrityProblem
}

func (c *imageCollector) gauge(ch chan<- prometheus.Metric, desc *prometheus.Desc, value float64) {
	ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, value, c.path)
}

// Collect is called by the Prometheus registry when collecting metrics.
func (c *imageCollector) Collect(ch chan<- prometheus.Metric) {
	img, err := c.load(c.path)
	if err != nil {
		klog.ErrorS(err, "unable to load image", "image", c.path)
		c.gauge(ch, c.up, 0)
		return
	}

	stats := img.Stats()
	c.gauge(ch, c.up, 1)
	c.gauge(ch, c.inodesTotal, float64(stats.InodeCount))
	c.gauge(ch, c.inodesUsed, float64(stats.UsedInodes))
	c.gauge(ch, c.dataBlocksTotal, float64(stats.DataRegionBlocks))
	c.gauge(ch, c.dataBlocksUsed, float64(stats.UsedDataBlocks))
	c.gauge(ch, c.dirEntries, float64(stats.DirEntries))
	c.gauge(ch, c.bytesTotal, float64(stats.TotalBlocks*volume.BlockSize))
	c.gauge(ch, c.lastModified, float64(stats.ModTime.Unix()))
	c.gauge(ch, c.integrityProblem, float64(len(img.Verify())))
}
