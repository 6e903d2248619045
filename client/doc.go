// Package client provides the configurable HTTP client, built on
// [net/http], that the download transports share.
//
// # Building a Client
//
// Use [Build] to create a [Client] with functional options:
//
//	c, err := client.Build(
//		client.WithTimeout(30 * time.Second),
//		client.WithConnectTimeout(10 * time.Second),
//		client.WithMaxRedirects(5),
//		client.WithUserAgent("imagedl/1.0"),
//	)
//
// # Making Requests
//
// [Client.Fetch] reads a whole body, [Client.Head] probes headers:
//
//	body, header, err := c.Fetch(ctx, "https://picsum.photos/640/480")
//	header, status, err := c.Head(ctx, "https://picsum.photos/640/480")
//
// For anything else, construct a [URL] and [Request], then execute with
// [Client.Do]:
//
//	u := client.URL("https", "images.unsplash.com", "/photo-1", client.WithQueryStrings(qs))
//	req, err := client.Request(ctx, u, http.MethodGet, client.WithHeaders(h))
//	err = c.Do(req, http.StatusPartialContent, client.WithResponseHeader(&header))
//
// A status outside the accepted set yields an [UnexpectedStatusError];
// use [StatusCode] to recover the code.
package client
