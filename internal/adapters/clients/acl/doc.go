// Package acl is the anti-corruption layer between the remote quote API and
// the application.
//
// Remote DTOs stay unexported in this package. Everything that crosses the
// boundary is either a [ports.RemoteRecord] or a domain error:
//
//   - transport failures, an open circuit and exhausted retries
//     become [domain.ErrUnavailable]
//   - every non-2xx status becomes [domain.ErrUnavailable], with the remote's
//     error message (when it sends one) in the reason
//   - malformed response bodies become [domain.ErrUnavailable] too; a remote
//     that answers with garbage is as good as down
//
// [RemoteQuoteClient] speaks a JSONPlaceholder-style API:
//
//	GET  {fetch_path}?_limit=N  -> [{"id":1,"title":"...","body":"..."}]
//	POST {post_path}            <- {"title":"...","body":"...","category":"..."}
package acl
