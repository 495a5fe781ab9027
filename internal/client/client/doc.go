// Package client is a small HTTP client for the credvault auth API.
//
// Every call maps a non-2xx reply to *APIError, which keeps the status code
// and the server's detail message. Transport failures (connection refused,
// timeouts) are reported as ErrUnavailable so callers can tell an offline
// server apart from a rejected request.
package client
