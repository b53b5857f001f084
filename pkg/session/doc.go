// Package session owns a live task dependency graph and exposes the only
// operations allowed to change its edges.
//
// # Mutations
//
// [Session.Connect], [Session.Retype] and [Session.Disconnect] form the Edge
// Mutation API. Connect and Retype gate every change through dag.Validate;
// a rejected change comes back as an [Outcome] with a reason and leaves the
// graph untouched:
//
//	out, err := s.Connect(ctx, "design", "build")
//	if err != nil {
//	    return err // unknown task
//	}
//	if !out.Accepted() {
//	    fmt.Println("rejected:", out.Rejected)
//	}
//
// After each committed mutation the critical path is recomputed, the layout
// is recomputed when auto-layout is on, and listeners registered with
// [Session.OnDependencyChange] receive the full dependency list.
//
// # Persistence
//
// [Session.Snapshot] and [Restore] convert to and from a [Snapshot], which a
// [Store] persists. Backends:
//
//   - [MemoryStore]: in-process, for tests and single-instance servers
//   - [FileStore]: JSON files, for the CLI
//   - [RedisStore]: shared across server instances
//   - [MongoStore]: document store with a TTL index
package session
