// Copyright 2023 Harald Albrecht.
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

/*
Package httptest wraps the standard library's httptest.ResponseRecorder in order
to fail any test doing superfluous response.WriteHeader calls, writing headers
after the status line went out, or sending a body in reply to a HEAD request.
*/
package httptest

import (
	"net/http"
	stdhttptest "net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// WrappedResponseRecorder wraps httptest.ResponseRecorder in order to fail
// tests doing superfluous WriteHeader calls and other response misbehavior.
type WrappedResponseRecorder struct {
	*stdhttptest.ResponseRecorder
	wroteHeader bool
	headOnly    bool
	sentHeader  http.Header // snapshot taken when writing the status line.
}

// NewRecorder returns a new test response recorder detecting superfluous
// WriteHeader calls.
func NewRecorder() *WrappedResponseRecorder {
	return &WrappedResponseRecorder{
		ResponseRecorder: stdhttptest.NewRecorder(),
	}
}

// NewHeadRecorder returns a new test response recorder that additionally
// fails tests writing any body data, as is required when answering HEAD
// requests.
func NewHeadRecorder() *WrappedResponseRecorder {
	w := NewRecorder()
	w.headOnly = true
	return w
}

// WriteHeader implements http.ResponseWriter, failing tests that do superfluous
// WriteHeader calls.
func (w *WrappedResponseRecorder) WriteHeader(code int) {
	GinkgoHelper()
	Expect(w.wroteHeader).To(BeFalse(), "superfluous response.WriteHeader call")
	w.wroteHeader = true
	w.sentHeader = w.ResponseRecorder.Header().Clone()
	w.ResponseRecorder.WriteHeader(code)
}

// Write implements http.ResponseWriter, failing tests that send a body when
// they must not.
func (w *WrappedResponseRecorder) Write(b []byte) (int, error) {
	GinkgoHelper()
	if w.headOnly {
		Expect(b).To(BeEmpty(), "response body written in reply to HEAD request")
	}
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseRecorder.Write(b)
}

// SentHeader returns the response header as it was when the status line got
// written, ignoring any later (and thus lost) modifications.
func (w *WrappedResponseRecorder) SentHeader() http.Header {
	if w.sentHeader == nil {
		return http.Header{}
	}
	return w.sentHeader
}
