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

package logging

import (
	"time"

	"github.com/sirupsen/logrus"
)

// BaseFields returns the fields common to process lifecycle log entries.
func BaseFields(action, root string) logrus.Fields {
	return logrus.Fields{
		"action": action,
		"root":   root,
	}
}

// RequestFields returns the fields of an access log entry.
func RequestFields(requestID, method, path string, status int, size int64, elapsed time.Duration) logrus.Fields {
	return logrus.Fields{
		"action":      "access",
		"request_id":  requestID,
		"method":      method,
		"path":        path,
		"status":      status,
		"bytes":       size,
		"duration_ms": float64(elapsed.Microseconds()) / 1000,
	}
}
