// Package services implements the typed Spotify Web API client.
//
// # Request Path
//
// Every call goes through [Client.Do]: the bearer token is obtained from a [TokenProvider] (normally an
// auth.Lifecycle, which refreshes expired tokens on demand), the request is executed by a transport.Executor, and any
// non-2xx result is mapped by [shared.CheckResponse] before a body is decoded.
//
// # Fetch Primitives
//
// The generic functions choose how a successful body is handled:
//   - [Fetch] : decode a required object; an empty result is a decode failure
//   - [FetchOptional] : decode an object that may legitimately be absent (204 or empty 200)
//   - [FetchWrapped] : decode the object found under a wrapper key, such as {"artists": {...}}
//   - [FetchPage] : decode a paging envelope, logging items that had to be skipped
//
// # Error Handling
//
// Errors are never swallowed or retried. Callers inspect them with errors.Is against [shared.ErrNetwork],
// [shared.ErrAPI], [shared.ErrRateLimited], [shared.ErrDecode] and [shared.ErrConfiguration].
package services
