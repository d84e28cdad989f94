/*
Package httpserver implements the HTTP service in front of the sskr package.

The public API is stateless: secrets and shards pass through in request and
response bodies and are never logged.

  - POST /api/v1/split   - split a secret into grouped shards, optionally storing them
  - POST /api/v1/combine - recover a secret from shards or from a stored manifest
  - POST /api/v1/inspect - decode a shard header without combining

When the server is started with a split plan it also serves the admin API of
a recovery keeper under /admin. Shard submissions are authenticated with the
X-Admin-ID and X-Admin-Signature headers, the signature being an ECDSA
signature over sha256(path || body):

  - GET  /admin/status - recovery progress per group, unauthenticated
  - POST /admin/shard  - submit a signed shard

Operational endpoints:

  - GET /livez, /readyz - liveness and readiness
  - GET /drain, /undrain - toggle readiness ahead of shutdown
  - /debug/pprof when enabled

sskr errors map to HTTP statuses: insufficient shards give 422, other shard
and parameter errors 400. The numeric error code is returned in the "code"
field of the error body.

# Example

	handler := httpserver.NewHandler(shardStore, logger)
	admin := httpserver.NewAdminHandler(logger, keeper, plan.AdminKeys())

	srv, err := httpserver.New(cfg, handler, admin)
	if err != nil {
		return err
	}
	srv.RunInBackground()
	defer srv.Shutdown()

	if err := admin.WaitForUnlock(ctx); err != nil {
		return err
	}
*/
package httpserver
