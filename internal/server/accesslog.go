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

package server

import (
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/thediveo/pwaserve/internal/logging"
)

// RequestIDHeader carries the request id, either passed in by a proxy or
// generated here.
const RequestIDHeader = "X-Request-Id"

// AccessLog logs a line per served request, tagging the request and its
// response with a request id.
func AccessLog(next http.Handler, log logrus.FieldLogger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := r.Header.Get(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, reqID)
		path := r.URL.Path // handlers might sanitize it in place.

		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		log.WithFields(logging.RequestFields(
			reqID, r.Method, path, rec.Status(), rec.size, time.Since(start),
		)).Info("request served")
	})
}

// statusRecorder remembers the status code and body size of a response.
type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int64
}

func (w *statusRecorder) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.size += int64(n)
	return n, err
}

// Status returns the response status, which defaults to 200 if the handler
// never wrote anything.
func (w *statusRecorder) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// Unwrap allows http.ResponseController to reach the original writer.
func (w *statusRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// newErrorLog routes net/http's own error messages (such as header parsing
// problems) into the structured log. The returned writer must be closed
// when done in order to release the goroutine feeding the log.
func newErrorLog(logger *logrus.Logger) (*log.Logger, *io.PipeWriter) {
	w := logger.WithField("action", "http").WriterLevel(logrus.WarnLevel)
	return log.New(w, "", 0), w
}
