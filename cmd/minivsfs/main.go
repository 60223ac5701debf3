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
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/minio/minivsfs/pkg/consts"
	"github.com/minio/minivsfs/pkg/metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"k8s.io/klog/v2"
)

// Version of this application populated by `go build`
// e.g. $ go build -ldflags="-X main.Version=v1.0.0"
var Version string

var mainCmd = &cobra.Command{
	Use:           consts.AppName,
	Short:         "Build and edit " + consts.AppPrettyName + " volume images.",
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       Version,
	PersistentPreRunE: func(c *cobra.Command, args []string) error {
		if err := viper.BindPFlags(c.Flags()); err != nil {
			return err
		}
		return validateOutputFormat(c)
	},
}

func init() {
	if Version == "" {
		mainCmd.Version = "0.0.0-dev"
	}

	viper.SetEnvPrefix(consts.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	kflags := flag.NewFlagSet("klog", flag.ExitOnError)
	klog.InitFlags(kflags)

	mainCmd.PersistentFlags().AddGoFlagSet(kflags)

	kflags.Set("logtostderr", "true")
	kflags.Set("alsologtostderr", "true")

	addQuietFlag(mainCmd)
	addMetricsFileFlag(mainCmd)

	mainCmd.PersistentFlags().MarkHidden("alsologtostderr")
	mainCmd.PersistentFlags().MarkHidden("add_dir_header")
	mainCmd.PersistentFlags().MarkHidden("log_file")
	mainCmd.PersistentFlags().MarkHidden("log_file_max_size")
	mainCmd.PersistentFlags().MarkHidden("one_output")
	mainCmd.PersistentFlags().MarkHidden("skip_headers")
	mainCmd.PersistentFlags().MarkHidden("skip_log_headers")
	mainCmd.PersistentFlags().MarkHidden("log_backtrace_at")
	mainCmd.PersistentFlags().MarkHidden("log_dir")
	mainCmd.PersistentFlags().MarkHidden("logtostderr")
	mainCmd.PersistentFlags().MarkHidden("stderrthreshold")
	mainCmd.PersistentFlags().MarkHidden("vmodule")

	viper.BindPFlags(mainCmd.PersistentFlags())

	mainCmd.AddCommand(buildCmd)
	mainCmd.AddCommand(addCmd)
	mainCmd.AddCommand(infoCmd)
	mainCmd.AddCommand(listCmd)
	mainCmd.AddCommand(verifyCmd)
	mainCmd.AddCommand(probeCmd)
	mainCmd.AddCommand(metricsCmd)
}

func writeMetricsFile() {
	metricsFile := viper.GetString(metricsFileFlag)
	if metricsFile == "" {
		return
	}
	if err := metrics.WriteTextfile(metricsFile, metricsImage); err != nil {
		eprintf(quiet(), true, "%v\n", err)
	}
}

// printError prints err as one diagnostic line; --quiet does not silence it.
func printError(err error) {
	eprintf(false, true, "%v\n", err)
}

func main() {
	ctx, cancelFunc := context.WithCancel(context.Background())

	// We must use a buffered channel or risk missing the signal
	// if we're not ready to receive when the signal is sent.
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case signal := <-signalCh:
			eprintf(quiet(), false, "\nExiting on signal %v\n", signal)
			cancelFunc()
			<-signalCh
			os.Exit(1)
		case <-ctx.Done():
		}
	}()

	err := mainCmd.ExecuteContext(ctx)
	writeMetricsFile()
	cancelFunc()
	if err != nil {
		printError(err)
		os.Exit(1)
	}
}
