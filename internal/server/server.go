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

// Package server runs the HTTP transport around an http.Handler: listening,
// access logging and graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Options controls how the server listens and shuts down.
type Options struct {
	Handler           http.Handler
	Logger            *logrus.Logger
	Port              int
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration // zero waits for active requests indefinitely.
}

// Server serves a handler until its context gets cancelled.
type Server struct {
	srv             *http.Server
	log             *logrus.Logger
	errLog          *io.PipeWriter // feeds net/http's error messages into log.
	shutdownTimeout time.Duration
}

// New returns a Server wrapping opts.Handler into access logging.
func New(opts Options) (*Server, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.Handler == nil {
		return nil, errors.New("handler is required")
	}
	if opts.Port <= 0 || opts.Port > 65535 {
		return nil, fmt.Errorf("invalid listen port: %d", opts.Port)
	}
	errLog, errLogWriter := newErrorLog(opts.Logger)
	return &Server{
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%d", opts.Port),
			Handler:           AccessLog(opts.Handler, opts.Logger),
			ReadHeaderTimeout: opts.ReadHeaderTimeout,
			ErrorLog:          errLog,
		},
		log:             opts.Logger,
		errLog:          errLogWriter,
		shutdownTimeout: opts.ShutdownTimeout,
	}, nil
}

// ListenAndServe listens on the configured port and serves until ctx is
// done. Failing to listen, such as when the port is already taken, is
// returned immediately; there are no retries.
func (s *Server) ListenAndServe(ctx context.Context) error {
	l, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		_ = s.errLog.Close()
		return fmt.Errorf("cannot listen on %s: %w", s.srv.Addr, err)
	}
	return s.Serve(ctx, l)
}

// Serve serves on the specified listener until ctx is done, then shuts down
// gracefully, waiting for active requests up to the shutdown timeout. A
// graceful shutdown returns nil. A Server serves only once.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	defer func() { _ = s.errLog.Close() }()
	served := make(chan error, 1)
	go func() {
		served <- s.srv.Serve(l)
	}()
	s.log.WithFields(logrus.Fields{
		"action": "listen",
		"addr":   l.Addr().String(),
	}).Info("serving")

	select {
	case err := <-served:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.WithFields(logrus.Fields{
		"action":  "shutdown",
		"timeout": s.shutdownTimeout.String(),
	}).Info("shutting down")
	shutdownCtx := context.Background()
	if s.shutdownTimeout > 0 {
		var cancel context.CancelFunc
		shutdownCtx, cancel = context.WithTimeout(shutdownCtx, s.shutdownTimeout)
		defer cancel()
	}
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown incomplete: %w", err)
	}
	<-served
	return nil
}
