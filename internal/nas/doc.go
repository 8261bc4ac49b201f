// Package nas provides an HTTP client for the NAS file catalog API.
//
// # Overview
//
// The client is a typed wrapper over the backend's JSON endpoints. It holds no
// state besides its configuration: each call is a single request/response
// round trip, with no caching, batching, retries or backoff. Deciding what to
// do with a failure is the caller's job (see the state package).
//
// # Files
//
//   - client.go: Client construction, the API interface and one method per endpoint
//   - types.go: Wire types (File, User, Settings, ChatMessage, ...)
//   - errors.go: APIError and status helpers
//
// # Endpoints
//
// All paths are rooted at /api on the configured server:
//
//	POST   /auth/login               Login
//	POST   /auth/signup              Signup
//	GET    /user                     FetchUser
//	PUT    /user/setting             UpdateSettings
//	GET    /files?page&size&sortBy&direction
//	GET    /files/{id}               FetchFile
//	GET    /files/history            FetchHistory
//	GET    /files/bookmarks          FetchBookmarks
//	GET    /files/tags               FetchTags
//	GET    /recommendations          FetchRecommendations
//	GET    /files/{id}/recommended   FetchRelated
//	POST   /files/{id}/bookmark      AddBookmark
//	DELETE /files/{id}/bookmark      RemoveBookmark
//	POST   /files/{id}/watch         Watch
//	POST   /files/{id}/tags          AddTag
//	DELETE /files/{id}/tags/{tag}    RemoveTag
//	PUT    /files/{id}/recommend     IncrementRecommendations
//	DELETE /watch-history/{id}       DeleteHistory
//	DELETE /watch-history            ClearHistory
//	POST   /chat/messages            AppendChatMessage
//
// # Authentication
//
// A TokenSource is consulted on every request. When it yields a non-empty
// token the request carries "Authorization: Bearer <token>". The session
// package provides the persisted implementation; StaticToken is handy in tests.
//
// # Error Handling
//
// Three failure shapes are reported, all as plain errors:
//
//   - "execute request: ...": transport failure (refused, timeout, DNS)
//   - *APIError: the server answered with a status >= 400
//   - "decode response: ...": the payload did not match the expected shape
//
// Use IsStatus or errors.Is(err, ErrUnauthorized) to branch on status.
//
// # Tracing
//
// The default transport is wrapped with otelhttp, so every call produces a
// client span once a tracer provider is installed (see the tracing package).
// Without one the global no-op provider makes this free.
package nas
