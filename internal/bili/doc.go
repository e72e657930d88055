// Package bili provides the HTTP client for the Bilibili web API.
//
// The package is split by concern:
//
//   - client.go: resty client, response envelope handling, wbi key cache,
//     signed and unsigned GET helpers, feed/search/history endpoints
//   - auth.go: QR login challenge generation and status polling
//   - types.go: payload structs mirroring the API schema plus display helpers
//
// Every response arrives wrapped in a {code, message, data} envelope. A
// non-zero code becomes an *APIError carrying the platform code verbatim;
// transport and decoding failures are wrapped with fmt.Errorf. The QR poll
// is the one endpoint handled outside the envelope helper because its
// session cookies travel out-of-band as Set-Cookie headers.
//
// Endpoints under /wbi/ require request signing. The client fetches the
// rotating key pair from /x/web-interface/nav (valid logged-out: code -101
// still carries the keys), caches it for twelve hours, and signs through
// the wbi package. Cookies set via SetCredentials authenticate everything
// else.
//
// The client is safe for concurrent use; the key cache holds its own lock
// and resty's transport pools connections internally.
package bili
