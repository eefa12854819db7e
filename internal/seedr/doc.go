// Package seedr is a minimal client for the Seedr.cc API.
//
// Seedr's device-authorization handshake predates RFC 8628 and deviates from
// it in several ways that require custom handling:
//   - device code and authorize-check are GET requests with query parameters
//     (the RFC specifies form-encoded POSTs)
//   - the pending state is reported as an error payload with no defined
//     retry interval semantics
//
// Every call is a single HTTP round trip. The client never retries or polls
// internally; callers decide when to check authorization again.
package seedr
