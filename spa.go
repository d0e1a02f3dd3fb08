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
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ForwardedPrefixHeader, if present, specifies the prefix that need to be
// preprended to the request's URI path in order to learn the original path
// when hitting the path rewriting proxy.
const ForwardedPrefixHeader = "X-Forwarded-Prefix"

// ForwardedUriHeader, if present, specifies the original URI (or sometimes only
// the original URI path) of a request when hitting the first path rewriting
// proxy.
const ForwardedUriHeader = "X-Forwarded-Uri"

// APIRejectedMessage is the body of responses to requests for the backend's
// API namespace.
const APIRejectedMessage = "API requests should go to backend server"

// baseRe matches the base element in index.html in order to allow us to
// dynamically rewrite the base the SPA is served from.
//
// Please note: "*?" instead of "*" ensures that our irregular expression
// doesn't get too greedy, gobbling much more than it should until the last(!)
// empty element.
var baseRe = regexp.MustCompile(`(<base href=").*?("\s*/?>)`)

// Handler implements an http.Handler serving a built SPA/PWA bundle. Requests
// are first classified by their path: API requests get rejected, static
// assets are served from the filesystem, and everything else gets the entry
// document. Static asset requests for files that don't exist get the entry
// document too, so stale asset URLs degrade to the application shell instead
// of a broken page.
//
// Handler is composed of a Classifier, a ContentTyper and a HeaderPolicy;
// the defaults can be swapped using HandlerOptions. A Handler is immutable
// after creation and thus safe for concurrent use.
type Handler struct {
	fs            fs.FS              // the FS to serve static resources from.
	index         string             // (unrooted) path and name of the entry document inside fs.
	classify      Classifier         // tags request paths.
	contentType   ContentTyper       // MIME types of served files.
	headerPolicy  HeaderPolicy       // CORS and caching headers.
	rewriteBase   bool               // rewrite <base href> based on forwarding proxy headers.
	indexRewriter IndexRewriter      // optional user function to rewrite the entry document.
	log           logrus.FieldLogger // never nil.
}

// NewHandler returns a new HTTP handler serving static resources from the
// specified fs, falling back to the index resource. The index resource should
// be specified as an unrooted, slash-separated path+name to be servable from
// the given fs; but NewHandler will sanitize the index path anyway.
//
// In order to serve from a directory on the OS file system, use os.DirFS; the
// directory then is the serving root and requests cannot escape it:
//
//	h := NewHandler(os.DirFS("/srv/dist"), "index.html")
func NewHandler(fs fs.FS, index string, opts ...HandlerOption) *Handler {
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	h := &Handler{
		fs:           fs,
		index:        path.Clean("/" + index)[1:],
		classify:     DefaultPatterns().Classify,
		contentType:  ContentType,
		headerPolicy: ApplyHeaderPolicy,
		log:          discard,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandlerOption sets optional properties at the time of creating a Handler.
type HandlerOption func(*Handler)

// IndexRewriter rewrites (parts) of the entry document contents to be
// delivered to a requesting client. It can be optionally activated using the
// WithIndexRewriter option when creating a new Handler.
type IndexRewriter func(r *http.Request, index string) string

// WithPatterns classifies request paths using the specified patterns instead
// of DefaultPatterns, and caches files in the patterns' asset directories.
func WithPatterns(p Patterns) HandlerOption {
	p = p.clone()
	return func(h *Handler) {
		h.classify = p.Classify
		h.headerPolicy = p.HeaderPolicy()
	}
}

// WithClassifier sets a custom Classifier.
func WithClassifier(c Classifier) HandlerOption {
	return func(h *Handler) {
		if c != nil {
			h.classify = c
		}
	}
}

// WithContentTyper sets a custom ContentTyper.
func WithContentTyper(ct ContentTyper) HandlerOption {
	return func(h *Handler) {
		if ct != nil {
			h.contentType = ct
		}
	}
}

// WithHeaderPolicy sets a custom HeaderPolicy.
func WithHeaderPolicy(p HeaderPolicy) HandlerOption {
	return func(h *Handler) {
		if p != nil {
			h.headerPolicy = p
		}
	}
}

// WithBaseRewriting rewrites the entry document's HTML base element to the
// base path the client sees, based on forwarding proxy headers.
func WithBaseRewriting() HandlerOption {
	return func(h *Handler) {
		h.rewriteBase = true
	}
}

// WithIndexRewriter sets the specified IndexRewriter that gets called before
// delivering the entry document contents to requesting clients, allowing for
// application-specific changes.
func WithIndexRewriter(rewriter IndexRewriter) HandlerOption {
	return func(h *Handler) {
		h.indexRewriter = rewriter
	}
}

// WithLogger logs rejections, fallbacks and failures to the specified logger.
func WithLogger(log logrus.FieldLogger) HandlerOption {
	return func(h *Handler) {
		if log != nil {
			h.log = log
		}
	}
}

// ServeHTTP classifies the request path and then either rejects the request,
// serves a static asset, or serves the entry document. The latter is required
// for SPAs with client-side DOM routers, as otherwise bookmarking (router)
// links or reloading an SPA with the current route other than "/" would fail.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reqPath := r.URL.Path
	if !strings.HasPrefix(reqPath, "/") {
		reqPath = "/" + reqPath
	}
	// Get the absolute and also cleaned path to the requested resource in order
	// to prevent parent directory traversal outside the serving root. Slapping
	// "/" ensures that path.Clean does NOT to use the current working dir for
	// resolving the request path. Apart from API rejection, which applies to
	// the path as requested, only the cleaned path gets classified, so that
	// dot segments cannot smuggle non-asset files past the classifier. The
	// trailing slash is kept for classifying directory prefixes.
	cleaned := path.Clean("/" + reqPath)
	classified := cleaned
	if strings.HasSuffix(reqPath, "/") && cleaned != "/" {
		classified += "/"
	}
	class := h.classify(reqPath)
	if class != RejectedAPI {
		class = h.classify(classified)
	}
	if class == RejectedAPI {
		h.log.WithFields(logrus.Fields{
			"action": "reject_api",
			"path":   reqPath,
		}).Info("API request rejected")
		h.serveError(w, http.StatusNotFound, APIRejectedMessage)
		return
	}

	switch r.Method {
	case http.MethodGet, http.MethodHead:
	case http.MethodOptions:
		h.headerPolicy(w.Header(), "")
		w.WriteHeader(http.StatusNoContent)
		return
	default:
		w.Header().Set("Allow", "GET, HEAD, OPTIONS")
		h.serveError(w, http.StatusNotImplemented, "501 Not Implemented")
		return
	}

	r.URL.Path = cleaned
	if class == StaticAsset && h.serveStaticAsset(w, r) {
		return
	}
	h.serveIndex(w, r)
}

// serveStaticAsset tries to serve a static asset specified in r.URL.Path from
// the Handler's fs and returning true if served, even if unsuccessfully. If no
// such static asset exists, nothing is served and false is returned instead.
//
// IMPORTANT: the passed r.URL.Path must have already been sanitized.
func (h *Handler) serveStaticAsset(w http.ResponseWriter, r *http.Request) bool {
	name := r.URL.Path[1:] // ...fs.FS uses unrooted paths.
	if name == "" {
		return false // hitting root is always a case for index.html
	}
	// Anything that isn't a plain file, or cannot even be stat'ed, is treated
	// as missing. fs.Stat deals with fs.FS implementations that don't support
	// fs.StatFS.
	info, err := fs.Stat(h.fs, name)
	if err != nil || !info.Mode().IsRegular() {
		h.log.WithFields(logrus.Fields{
			"action": "fallback",
			"path":   r.URL.Path,
			"served": "/" + h.index,
		}).Debug("static asset missing, serving entry document")
		return false
	}
	// The file existed a moment ago, so whatever goes wrong now is on us.
	contents, err := fs.ReadFile(h.fs, name)
	if err != nil {
		h.logReadError(r.URL.Path, http.StatusInternalServerError, err)
		h.serveError(w, http.StatusInternalServerError, "500 Internal Server Error")
		return true
	}
	h.serveContents(w, r, r.URL.Path, info.ModTime(), contents)
	return true
}

// serveIndex serves the entry document, optionally rewriting its HTML base
// element to refer the correct base path of the SPA.
func (h *Handler) serveIndex(w http.ResponseWriter, r *http.Request) {
	info, err := fs.Stat(h.fs, h.index)
	if err != nil {
		h.serveFsError(w, "/"+h.index, err)
		return
	}
	contents, err := fs.ReadFile(h.fs, h.index)
	if err != nil {
		h.serveFsError(w, "/"+h.index, err)
		return
	}
	if h.rewriteBase || h.indexRewriter != nil {
		index := string(contents)
		if h.rewriteBase {
			// Sanitize the base path so it cannot interfere with our regexp
			// replacement operations where we need to use "$1" and "$2" back
			// references.
			base := strings.ReplaceAll(h.basename(r), "$", "")
			index = baseRe.ReplaceAllString(index, "${1}"+base+"${2}")
		}
		if h.indexRewriter != nil {
			index = h.indexRewriter(r, index)
		}
		contents = []byte(index)
	}
	h.serveContents(w, r, "/"+h.index, info.ModTime(), contents)
}

// serveContents writes a complete 200 response for the contents of the file
// at servedPath. The header policy and content type are keyed on servedPath,
// not on the request path.
func (h *Handler) serveContents(w http.ResponseWriter, r *http.Request, servedPath string, modTime time.Time, contents []byte) {
	hdr := w.Header()
	h.headerPolicy(hdr, servedPath)
	hdr.Set("Content-Type", h.contentType(servedPath))
	hdr.Set("Content-Length", strconv.Itoa(len(contents)))
	if !modTime.IsZero() {
		hdr.Set("Last-Modified", modTime.UTC().Format(http.TimeFormat))
	}
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(contents)
}

func (h *Handler) serveError(w http.ResponseWriter, status int, msg string) {
	h.headerPolicy(w.Header(), "")
	http.Error(w, msg, status)
}

func (h *Handler) serveFsError(w http.ResponseWriter, name string, err error) {
	h.logReadError(name, NormalizedStatus(err), err)
	h.headerPolicy(w.Header(), "")
	NormalizedHttpError(w, err)
}

func (h *Handler) logReadError(name string, status int, err error) {
	h.log.WithFields(logrus.Fields{
		"action": "read",
		"path":   name,
		"status": status,
	}).WithError(err).Error("cannot read file")
}

// originalReqPath returns the (hopefully) original path when hitting the first
// proxy in a chain, based on what has been passed down to us. If no suitable
// forwarding information is present, the original -- and already sanitized --
// request URL path.
func (h *Handler) originalReqPath(r *http.Request) string {
	// Was the request path rewritten? Then the original request path was the
	// forwarded prefix, followed by the remaining part we now see in the
	// request.
	if fwprefix := r.Header.Get(ForwardedPrefixHeader); fwprefix != "" {
		fwprefix = path.Clean("/" + fwprefix)
		return path.Join(fwprefix, r.URL.Path)
	}
	// Some proxies pass only the request path, others the full original URI.
	if fwurl := r.Header.Get(ForwardedUriHeader); fwurl != "" {
		if strings.HasPrefix(fwurl, "/") {
			return path.Clean(fwurl)
		}
		if u, err := url.Parse(fwurl); err == nil {
			return path.Clean("/" + u.Path)
		}
	}
	return r.URL.Path
}

// basename returns the URI request path base based on the given request, by
// consulting proxy headers when available. Rewriting forwarding proxies need to
// preserve the original client-side request URI path for this to work; if
// deriving the base name is impossible, the base is taken to be "/" from the
// clients' perspective.
func (h *Handler) basename(r *http.Request) string {
	reqPath := r.URL.Path
	originalReqPath := h.originalReqPath(r)
	var base string
	if strings.HasSuffix(reqPath, "/") && !strings.HasSuffix(originalReqPath, "/") {
		// take care of the situation where the reverse proxy redirects from
		// /foo to /foo/ and then rewrites the path to /.
		originalReqPath += "/"
	}
	// If the request path we see is a proper suffix of the original request
	// path, take only the common base part (~prefix).
	if strings.HasSuffix(originalReqPath, reqPath) {
		base = originalReqPath[:len(originalReqPath)-len(reqPath)]
	}
	// The base must end in "/", as otherwise browsers clip off the final
	// element that once was a proper directory name.
	if strings.HasSuffix(base, "/") {
		return base
	}
	return base + "/"
}
