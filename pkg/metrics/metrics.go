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
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/minio/minivsfs/pkg/consts"
	fserrors "github.com/minio/minivsfs/pkg/fs/errors"
	"github.com/minio/minivsfs/pkg/image"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"k8s.io/klog/v2"
)

var (
	volumesBuilt = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: consts.MetricsNamespace,
		Subsystem: "mkfs",
		Name:      "volumes_built_total",
		Help:      "Total number of volume images built",
	})

	filesInjected = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: consts.MetricsNamespace,
		Subsystem: "inject",
		Name:      "files_total",
		Help:      "Total number of files injected",
	})

	bytesInjected = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: consts.MetricsNamespace,
		Subsystem: "inject",
		Name:      "bytes_total",
		Help:      "Total number of file bytes injected",
	})

	blocksAllocated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: consts.MetricsNamespace,
		Subsystem: "inject",
		Name:      "blocks_allocated_total",
		Help:      "Total number of data blocks allocated by injection",
	})

	operationErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: consts.MetricsNamespace,
		Name:      "operation_errors_total",
		Help:      "Total number of failed operations by error kind",
	}, []string{"operation", "kind"})
)

// ObserveError counts a failed operation.
func ObserveError(operation string, err error) {
	if err != nil {
		operationErrors.WithLabelValues(operation, fserrors.Kind(err)).Inc()
	}
}

// ObserveBuild counts the outcome of a build.
func ObserveBuild(err error) {
	if err != nil {
		ObserveError("build", err)
		return
	}
	volumesBuilt.Inc()
}

// ObserveInject counts the outcome of an injection.
func ObserveInject(result *image.InjectResult, err error) {
	if err != nil {
		ObserveError("add", err)
		return
	}
	filesInjected.Inc()
	bytesInjected.Add(float64(result.Size))
	blocksAllocated.Add(float64(len(result.Blocks)))
}

// NewRegistry returns a registry holding operation counters and, if
// imagePath is not empty, usage gauges of the image at imagePath.
func NewRegistry(imagePath string) (*prometheus.Registry, error) {
	registry := prometheus.NewRegistry()
	collectors := []prometheus.Collector{
		volumesBuilt,
		filesInjected,
		bytesInjected,
		blocksAllocated,
		operationErrors,
	}
	if imagePath != "" {
		collectors = append(collectors, newImageCollector(imagePath))
	}

	for _, collector := range collectors {
		if err := registry.Register(collector); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

// WriteTextfile writes all metrics to filename in text exposition format
// for node exporter's textfile collector.
func WriteTextfile(filename, imagePath string) error {
	registry, err := NewRegistry(imagePath)
	if err != nil {
		return err
	}
	if err := prometheus.WriteToTextfile(filename, registry); err != nil {
		return fserrors.IOError("write metrics to "+filename, err)
	}
	return nil
}

func metricsHandler(imagePath string) (http.Handler, error) {
	registry, err := NewRegistry(imagePath)
	if err != nil {
		return nil, err
	}

	return promhttp.InstrumentMetricHandler(
		registry,
		promhttp.HandlerFor(registry,
			promhttp.HandlerOpts{
				ErrorHandling: promhttp.ContinueOnError,
			}),
	), nil
}

// ServeMetrics serves metrics of the image at imagePath on address until
// ctx is done.
func ServeMetrics(ctx context.Context, imagePath, address string) error {
	handler, err := metricsHandler(imagePath)
	if err != nil {
		return err
	}

	config := net.ListenConfig{}
	listener, err := config.Listen(ctx, "tcp", address)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			klog.ErrorS(err, "unable to shutdown metrics server")
		}
	}()

	klog.V(2).InfoS("Starting metrics exporter", "address", listener.Addr().String(), "image", imagePath)
	if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
