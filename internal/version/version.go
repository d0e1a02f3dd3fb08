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

// Package version carries the version information injected at build time
// using -ldflags "-X".
package version

import "fmt"

var (
	Version = "0.1.0"
	Commit  = "dev"
)

// Full returns the version information for printing.
func Full() string {
	return fmt.Sprintf("pwaserve %s (%s)", Version, Commit)
}
