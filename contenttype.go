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

import (
	"mime"
	"path"
	"strings"
)

// DefaultContentType is used when nothing more specific is known about a
// served file.
const DefaultContentType = "application/octet-stream"

// ContentTyper returns the MIME type to serve a file with.
type ContentTyper func(path string) string

// contentTypes lists the file name endings whose MIME types must not be left
// to the platform's MIME database: some systems register ".js" as
// "text/plain" or know nothing about ".webmanifest", which breaks ES module
// loading and PWA installation. The first matching entry wins.
var contentTypes = []struct {
	suffix string
	mime   string
}{
	{".js", "application/javascript"},
	{".css", "text/css"},
	{".html", "text/html"},
	{".json", "application/json"},
	{".webmanifest", "application/manifest+json"},
	{"sw.js", "application/javascript"},
	{"registerSW.js", "application/javascript"},
}

// ContentType returns the MIME type for the file at the specified path,
// overriding the system MIME database for script, stylesheet, document,
// manifest and service worker files. Suffixes are matched case-sensitively.
func ContentType(p string) string {
	for _, ct := range contentTypes {
		if strings.HasSuffix(p, ct.suffix) {
			return ct.mime
		}
	}
	if strings.Contains(p, "workbox") && strings.HasSuffix(p, ".js") {
		return "application/javascript"
	}
	if ext := path.Ext(p); ext != "" {
		if mimetype := mime.TypeByExtension(ext); mimetype != "" {
			return mimetype
		}
	}
	return DefaultContentType
}
