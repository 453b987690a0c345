// Package transport builds the HTTP client the load driver sends requests
// with. It applies the request timeout, sizes the idle connection pool to
// the wave size, optionally dials through a SOCKS5 proxy, and injects
// static headers into every request.
package transport
