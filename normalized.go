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
	"errors"
	"io/fs"
	"net/http"
)

// NormalizedStatus returns the HTTP status code corresponding with the
// specified filesystem error.
func NormalizedStatus(err error) int {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, fs.ErrPermission):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// NormalizedHttpError writes a normalized HTTP error message and HTTP status
// code based on the specified error, but not leaking any interesting internal
// server details from this specified error.
func NormalizedHttpError(w http.ResponseWriter, err error) {
	switch status := NormalizedStatus(err); status {
	case http.StatusNotFound:
		http.Error(w, "404 page not found", status)
	case http.StatusForbidden:
		http.Error(w, "403 Forbidden", status)
	default:
		http.Error(w, "500 Internal Server Error", status)
	}
}
