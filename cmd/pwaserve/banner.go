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

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/thediveo/pwaserve/internal/config"
	"github.com/thediveo/pwaserve/internal/version"
)

// printBanner tells humans what is being served where.
func printBanner(w io.Writer, cfg *config.Config) {
	title := color.New(color.FgGreen, color.Bold)
	key := color.New(color.FgCyan)
	line := func(k, v string) {
		key.Fprintf(w, "  %-14s", k)
		fmt.Fprintln(w, v)
	}

	title.Fprintln(w, version.Full())
	line("root", cfg.Root)
	line("url", fmt.Sprintf("http://localhost:%d", cfg.Port))
	line("entry", cfg.Index+" (all client-side routes)")
	line("static", strings.Join(cfg.AssetDirs, ", ")+", scripts, styles, images, fonts")
	if cfg.APIPrefix != "" {
		line("api", cfg.APIPrefix+" rejected, use the backend")
	}
	if cfg.RewriteBase {
		line("base", "rewritten from X-Forwarded-Prefix/-Uri")
	}
	color.New(color.Faint).Fprintln(w, "  press Ctrl+C to stop")
}
