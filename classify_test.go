// Copyright 2022 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy
// of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations
// under the License.

package pwaserve

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("request path classification", func() {

	DescribeTable("classifies with the default patterns",
		func(path string, expected Class) {
			Expect(DefaultPatterns().Classify(path)).To(Equal(expected))
		},
		Entry("API root", "/api/", RejectedAPI),
		Entry("API resource", "/api/users", RejectedAPI),
		Entry("API resource looking like an asset", "/api/app.js", RejectedAPI),
		Entry("API without trailing slash is an app route", "/api", FallbackRoute),

		Entry("asset directory", "/assets/index-abc123.js", StaticAsset),
		Entry("asset directory without known extension", "/assets/data.bin", StaticAsset),
		Entry("manifest", "/manifest.webmanifest", StaticAsset),
		Entry("manifest json", "/manifest.json", StaticAsset),
		Entry("service worker", "/sw.js", StaticAsset),
		Entry("service worker map", "/sw.js.map", StaticAsset),
		Entry("nested service worker", "/app/sw.js", StaticAsset),
		Entry("service worker registration", "/registerSW.js", StaticAsset),
		Entry("workbox", "/lib/workbox", StaticAsset),
		Entry("vite logo", "/vite.svg", StaticAsset),
		Entry("favicon", "/favicon.ico", StaticAsset),
		Entry("favicon variant", "/favicon-32x32.png", StaticAsset),
		Entry("stylesheet", "/some/where/style.css", StaticAsset),
		Entry("jpeg", "/img/photo.jpeg", StaticAsset),
		Entry("font", "/fonts/inter.woff2", StaticAsset),
		Entry("eot font", "/fonts/old.eot", StaticAsset),

		Entry("root", "/", FallbackRoute),
		Entry("client route", "/dashboard", FallbackRoute),
		Entry("deep client route", "/dashboard/settings/42", FallbackRoute),
		Entry("index document", "/index.html", FallbackRoute),
		Entry("robots", "/robots.txt", FallbackRoute),
		Entry("suffixes are case-sensitive", "/APP.JS", FallbackRoute),
	)

	It("uses a configured API prefix", func() {
		p := DefaultPatterns()
		p.APIPrefix = "/backend/"
		Expect(p.Classify("/backend/orders")).To(Equal(RejectedAPI))
		Expect(p.Classify("/api/orders")).To(Equal(FallbackRoute))
	})

	It("never rejects with an empty API prefix", func() {
		p := DefaultPatterns()
		p.APIPrefix = ""
		Expect(p.Classify("/api/orders")).To(Equal(FallbackRoute))
		Expect(p.Classify("/")).To(Equal(FallbackRoute))
	})

	It("names classes", func() {
		Expect(RejectedAPI.String()).To(Equal("rejected-api"))
		Expect(StaticAsset.String()).To(Equal("static-asset"))
		Expect(FallbackRoute.String()).To(Equal("fallback-route"))
	})

})
