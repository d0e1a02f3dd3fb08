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

import "net/http"

// Cache-Control directives of the two cache classes.
const (
	ImmutableCacheControl = "public, max-age=31536000, immutable"
	NoCacheControl        = "no-cache, no-store, must-revalidate"
)

// HeaderPolicy sets the CORS and caching headers of a response, given the
// path of what is actually going to be served. An empty served path denotes
// a response without file contents, such as errors.
type HeaderPolicy func(h http.Header, servedPath string)

// immutableSuffixes are the endings of served files eligible for long-term
// caching, in addition to anything inside the asset directory.
var immutableSuffixes = []string{
	".js", ".css",
	".png", ".jpg", ".jpeg", ".gif", ".svg", ".ico",
	".woff", ".woff2", ".ttf", ".eot",
}

// ApplyHeaderPolicy is the default HeaderPolicy: CORS headers always, plus
// either the immutable caching or the no-cache header set. Files inside
// "/assets/" count as immutable.
//
// The served path must be the path after any fallback substitution. Keying
// the cache decision on the original request path instead would mark the
// entry document served in place of a missing asset as immutable.
func ApplyHeaderPolicy(h http.Header, servedPath string) {
	applyHeaderPolicy(h, servedPath, defaultAssetDirs)
}

// HeaderPolicy returns the default header policy, but with the asset
// directories of these patterns counting as immutable.
func (p Patterns) HeaderPolicy() HeaderPolicy {
	assetDirs := append([]string(nil), p.AssetDirs...)
	return func(h http.Header, servedPath string) {
		applyHeaderPolicy(h, servedPath, assetDirs)
	}
}

var defaultAssetDirs = []string{"/assets/"}

func applyHeaderPolicy(h http.Header, servedPath string, assetDirs []string) {
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")

	if servedPath != "" &&
		(hasAnyPrefix(servedPath, assetDirs) || hasAnySuffix(servedPath, immutableSuffixes)) {
		h.Set("Cache-Control", ImmutableCacheControl)
		h.Del("Pragma")
		h.Del("Expires")
		return
	}
	h.Set("Cache-Control", NoCacheControl)
	h.Set("Pragma", "no-cache")
	h.Set("Expires", "0")
}
