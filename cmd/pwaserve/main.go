// Copyright 2026 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command pwaserve serves a built single-page application from a directory,
// falling back to the entry document for client-side routes.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/thediveo/pwaserve"
	"github.com/thediveo/pwaserve/internal/config"
	"github.com/thediveo/pwaserve/internal/logging"
	"github.com/thediveo/pwaserve/internal/server"
	"github.com/thediveo/pwaserve/internal/version"
)

// Exit codes.
const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

var (
	stdOut io.Writer = os.Stdout
	stdErr io.Writer = os.Stderr
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

// run serves until ctx is done and returns the process exit code.
func run(ctx context.Context, args []string) int {
	fs := pflag.NewFlagSet("pwaserve", pflag.ContinueOnError)
	fs.SetOutput(stdErr)
	config.RegisterFlags(fs)
	showVersion := fs.Bool("version", false, "show version information and exit")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if *showVersion {
		fmt.Fprintln(stdOut, version.Full())
		return exitOK
	}

	cfg, err := config.Load(fs)
	if err != nil {
		fmt.Fprintf(stdErr, "invalid configuration: %v\n", err)
		return exitUsage
	}
	logger, err := logging.InitLogger(cfg)
	if err != nil {
		fmt.Fprintf(stdErr, "cannot set up logging: %v\n", err)
		return exitUsage
	}

	srv, err := server.New(server.Options{
		Handler:           newHandler(cfg, logger),
		Logger:            logger,
		Port:              cfg.Port,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ShutdownTimeout:   cfg.ShutdownTimeout,
	})
	if err != nil {
		fmt.Fprintf(stdErr, "cannot create server: %v\n", err)
		return exitFailed
	}

	fields := logging.BaseFields("startup", cfg.Root)
	fields["port"] = cfg.Port
	fields["index"] = cfg.Index
	fields["api_prefix"] = cfg.APIPrefix
	fields["version"] = version.Full()
	logger.WithFields(fields).Info("configuration loaded")
	printBanner(stdErr, cfg)

	if err := srv.ListenAndServe(ctx); err != nil {
		logger.WithFields(logging.BaseFields("listen", cfg.Root)).WithError(err).Error("server failed")
		return exitFailed
	}
	logger.WithFields(logging.BaseFields("stop", cfg.Root)).Info("server stopped")
	return exitOK
}

// newHandler returns the SPA handler serving from the configured root.
func newHandler(cfg *config.Config, logger *logrus.Logger) *pwaserve.Handler {
	patterns := pwaserve.DefaultPatterns()
	patterns.APIPrefix = cfg.APIPrefix
	patterns.AssetDirs = cfg.AssetDirs
	opts := []pwaserve.HandlerOption{
		pwaserve.WithPatterns(patterns),
		pwaserve.WithLogger(logger),
	}
	if cfg.RewriteBase {
		opts = append(opts, pwaserve.WithBaseRewriting())
	}
	return pwaserve.NewHandler(os.DirFS(cfg.Root), cfg.Index, opts...)
}
