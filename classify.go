// Copyright 2022 Harald Albrecht.
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

package pwaserve

import "strings"

// Class tags a request path with how it is going to be served.
type Class int

const (
	// FallbackRoute paths are client-side routes; they get the entry
	// document.
	FallbackRoute Class = iota
	// StaticAsset paths look like build output and are served from the
	// filesystem when present.
	StaticAsset
	// RejectedAPI paths belong to the backend API namespace and are never
	// served (nor forwarded) by us.
	RejectedAPI
)

func (c Class) String() string {
	switch c {
	case StaticAsset:
		return "static-asset"
	case RejectedAPI:
		return "rejected-api"
	default:
		return "fallback-route"
	}
}

// Classifier tags a decoded request path. It must be a pure function.
type Classifier func(path string) Class

// Patterns is the finite set of literal prefixes and suffixes request paths
// get classified by. There's no globbing; the checks run in the order API
// prefix, directory prefixes, top-level file prefixes, suffixes.
type Patterns struct {
	APIPrefix     string   // backend namespace, such as "/api/".
	AssetDirs     []string // directory prefixes of static assets, such as "/assets/".
	TopLevelFiles []string // name prefixes of files in the root, such as "/favicon".
	Suffixes      []string // file name endings (mostly extensions) of static assets.
}

// DefaultPatterns returns the patterns matching the output of a Vite build
// with the PWA plugin.
func DefaultPatterns() Patterns {
	return Patterns{
		APIPrefix: "/api/",
		AssetDirs: []string{"/assets/"},
		TopLevelFiles: []string{
			"/manifest",
			"/sw.js",
			"/vite.svg",
			"/favicon",
		},
		Suffixes: []string{
			"sw.js", "registerSW.js", "workbox",
			".js", ".css",
			".png", ".jpg", ".jpeg", ".gif", ".svg", ".ico",
			".woff", ".woff2", ".ttf", ".eot",
		},
	}
}

// Classify returns the Class of the specified (already URL-decoded) request
// path.
func (p Patterns) Classify(path string) Class {
	if p.APIPrefix != "" && strings.HasPrefix(path, p.APIPrefix) {
		return RejectedAPI
	}
	if hasAnyPrefix(path, p.AssetDirs) || hasAnyPrefix(path, p.TopLevelFiles) {
		return StaticAsset
	}
	if hasAnySuffix(path, p.Suffixes) {
		return StaticAsset
	}
	return FallbackRoute
}

// clone returns a deep copy, so that later changes by the caller to the
// original slices don't leak into a Handler.
func (p Patterns) clone() Patterns {
	p.AssetDirs = append([]string(nil), p.AssetDirs...)
	p.TopLevelFiles = append([]string(nil), p.TopLevelFiles...)
	p.Suffixes = append([]string(nil), p.Suffixes...)
	return p
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}
