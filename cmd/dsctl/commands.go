package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hanfei1991/dataservice/dataservice"
	"github.com/hanfei1991/dataservice/model"
	"github.com/hanfei1991/dataservice/pipeline"
	"github.com/hanfei1991/dataservice/pkg/promutil"
)

const statusShutdownTimeout = 3 * time.Second

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "dsctl",
		Short:        "Register and read datasets of a data service",
		SilenceUsage: true,
	}
	root.AddCommand(
		newConfigCommand("register", "Register a range pipeline and print its dataset id", runRegister),
		newConfigCommand("read", "Read the elements of a dataset", runRead),
		newConfigCommand("print-config", "Print the effective configuration as TOML", runPrintConfig),
	)
	return root
}

// newConfigCommand builds a command whose flags are parsed by
// dataservice.Config, so that they can be mixed with a config file.
func newConfigCommand(
	use, short string, run func(cmd *cobra.Command, cfg *dataservice.Config) error,
) *cobra.Command {
	return &cobra.Command{
		Use:                use,
		Short:              short,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := dataservice.NewConfig()
			for _, arg := range args {
				if arg == "-h" || arg == "--help" {
					fmt.Fprintln(cmd.OutOrStdout(), cmd.Short)
					fmt.Fprintln(cmd.OutOrStdout(), cfg.FlagSet().FlagUsages())
					return nil
				}
			}
			if err := cfg.Parse(args); err != nil {
				return err
			}
			if err := initLogger(cfg); err != nil {
				return err
			}
			log.L().Debug("parsed config", zap.Stringer("config", cfg))
			return run(cmd, cfg)
		},
	}
}

func initLogger(cfg *dataservice.Config) error {
	logger, props, err := log.InitLogger(&log.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   log.FileLogConfig{Filename: cfg.LogFile},
	})
	if err != nil {
		return errors.Trace(err)
	}
	log.ReplaceGlobals(logger, props)
	return nil
}

// serveStatus serves the metrics of the process on addr. The returned
// function stops the server.
func serveStatus(addr string) func() {
	if addr == "" {
		return func() {}
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promutil.HTTPHandlerForMetric())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.L().Warn("status server exited", zap.String("addr", addr), zap.Error(err))
		}
	}()
	log.L().Info("status server started", zap.String("addr", addr))
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), statusShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.L().Warn("shutdown status server failed", zap.Error(err))
		}
	}
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

func definition(cfg *dataservice.Config) *pipeline.Definition {
	def := pipeline.FromRange(cfg.Dataset.Range)
	if cfg.Dataset.Repeat != 1 {
		def.Repeat(cfg.Dataset.Repeat)
	}
	return def
}

func openDataset(ctx context.Context, cfg *dataservice.Config) (*dataservice.Dataset, error) {
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	def := definition(cfg)
	if cfg.Dataset.ID >= 0 {
		return dataservice.FromDatasetID(model.DatasetID(cfg.Dataset.ID), def.Spec, opts)
	}
	return dataservice.Distribute(ctx, def, opts)
}

func runRegister(cmd *cobra.Command, cfg *dataservice.Config) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()
	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	ds, err := dataservice.Distribute(ctx, definition(cfg), opts)
	if err != nil {
		return err
	}
	defer ds.Close()
	fmt.Fprintf(cmd.OutOrStdout(), "dataset id: %d\n", ds.ID())
	return nil
}

func runRead(cmd *cobra.Command, cfg *dataservice.Config) (retErr error) {
	ctx, cancel := commandContext(cmd)
	defer cancel()
	defer serveStatus(cfg.StatusAddr)()

	ds, err := openDataset(ctx, cfg)
	if err != nil {
		return err
	}
	defer ds.Close()
	r, err := ds.Iterate(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := r.Close(); err != nil && retErr == nil {
			retErr = err
		}
	}()

	var read int64
	for cfg.Dataset.Take < 0 || read < cfg.Dataset.Take {
		elem, err := r.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		v, err := elem.Int64(0)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), v)
		read++
	}
	log.L().Info("read finished", zap.Int64("dataset-id", int64(ds.ID())), zap.Int64("elements", read))
	return nil
}

func runPrintConfig(cmd *cobra.Command, cfg *dataservice.Config) error {
	s, err := cfg.Toml()
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), s)
	return nil
}
