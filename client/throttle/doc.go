// Package throttle provides an [http.RoundTripper] that rate-limits
// outbound image requests per host using a token-bucket algorithm from
// [golang.org/x/time/rate].
//
// Each distinct request host gets its own bucket, so a batch spread over
// several image providers is only slowed down where it hammers one of them.
// When a bucket is empty, the request blocks until a token becomes
// available or the request context is cancelled.
package throttle
