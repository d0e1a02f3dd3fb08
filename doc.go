/*
Package pwaserve serves the build output of "Single Page Applications" (SPAs)
and progressive web apps, supporting client-side DOM routing and hard page
reloads on any client-side route.

The Handler type implements http.Handler. It classifies each request path
into one of three classes: requests for the backend API namespace get
rejected with a 404, as this server never proxies them; requests looking
like static build assets (by directory prefix, top-level file name or file
extension) are served byte-for-byte from an fs.FS; everything else gets the
entry document, usually index.html. Requests for static assets that don't
exist get the entry document as well.

Content types of scripts, stylesheets, manifests and service worker files
are fixed instead of relying on the platform MIME database. Every response
carries permissive CORS headers, and either long-lived immutable caching
headers (static assets) or no-cache headers (entry document and anything
else).
*/
package pwaserve
