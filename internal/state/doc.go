// Package state holds the client-side session state for stash.
//
// # Overview
//
// Store is the single source of truth for the authenticated user, the paged
// file collection, the view history, the chat log and the selected file. The
// UI never mutates it directly: every change is a named action method.
//
// # Confirm, Then Apply
//
// Mutating actions follow one pattern:
//
//	read local value (if needed) ─> one API call ─> on success, apply under lock
//
// Nothing is applied speculatively, so there is no rollback path and no
// "pending" value is ever visible. On failure the error is logged through zap
// and returned to the caller; local state is left exactly as it was.
//
// Settings are the same: UpdateUserSettings only merges the patch after the
// server accepts it.
//
// # Locking
//
// The mutex is held only while copying or applying in-memory state, never
// across network I/O. Two actions for different file ids can be in flight at
// once without interfering. Two actions for the same id are not serialized;
// each applies based on the value it read before its call, and the one that
// completes last wins. Callers that care (double-clicks) should debounce.
//
// # Session Epoch
//
// Logout bumps an epoch counter. Actions capture the epoch before their call
// and refuse to apply if it changed, returning ErrSessionEnded. A request that
// completes after logout therefore cannot resurrect any state.
//
// The file collection has its own generation counter bumped by ResetFiles, so
// a page requested under an old search query is dropped (ErrStalePage).
//
// # Deduplication
//
// FetchFiles merges pages through an id→index map kept alongside the ordered
// slice. Re-fetching a page never produces duplicates and the merge cost is
// proportional to the page, not to the collection.
//
// # View History
//
// Watch moves the id to the front of the history, removing any earlier entry,
// and trims the list to MaxViewHistory (50) ids.
//
// # Persistence
//
// Persist writes the user, view history and chat log through the Persister
// (normally *session.Session). Hydrate restores them at startup. Logout clears
// both the token and the snapshot.
//
// # Snapshots
//
// Snapshot returns deep copies (tags and timestamps included) so the UI can
// hold on to them while actions keep running.
package state
