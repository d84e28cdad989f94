// Command httpserver serves the sskr HTTP API.
//
// Without --plan it exposes the stateless endpoints:
//
//	POST /api/v1/split
//	POST /api/v1/combine
//	POST /api/v1/inspect
//
// With --store the split endpoint can persist shard sets and combine can load
// them back by manifest id.
//
// With --plan the server also runs a recovery keeper for the plan's split.
// Admins submit their shards, signed with the keys listed in the plan, to
// POST /admin/shard (see `sskr submit`) and can watch progress on
// GET /admin/status. The keeper unlocks once the group thresholds are met.
// --admin-listen-addr moves these endpoints to a separate listener.
//
// Example:
//
//	httpserver --listen-addr 127.0.0.1:8080 --plan plan.yaml --store file:///var/lib/sskr
package main
