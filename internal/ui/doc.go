// Package ui provides the Bubble Tea terminal interface for stash.
//
// # Architecture
//
// The UI is a single Bubble Tea Model. It owns no catalog data: every
// render reads a state.Snapshot, and every change goes through a
// state.Store action started from a tea.Cmd so network calls never block
// the event loop.
//
//	┌──────────────┐   action Cmd    ┌──────────────┐   HTTP   ┌─────┐
//	│  ui.Model    │ ──────────────> │ state.Store  │ ───────> │ NAS │
//	│              │ <────────────── │              │          └─────┘
//	└──────┬───────┘   snapshotMsg   └──────┬───────┘
//	       │  ScrollPercent                 │ Subscribe()
//	       v                                │
//	┌──────────────┐   FetchFiles           │
//	│ pager.Pager  │ ───────────────────────┘
//	└──────────────┘
//
// Snapshots arrive when the store signals a change and on every tick, so
// results from background work show up without polling the server.
//
// # Views
//
//   - Login: username and password, ctrl+n switches to signup
//   - Files: the merged collection, list or grid per the user's setting
//   - Folders: the loaded files as a tree built from their paths, each
//     folder showing how many files sit directly in it
//   - Details: the selected file with its related files
//   - History: watch history grouped by month with per-type counts
//   - Bookmarks, Recommendations: read-through listings
//   - Chat: questions answered from the loaded files
//   - Logs: the tail of stash's own log file
//
// # Pagination
//
// On each tick, and after each cursor move, the files view hands the body
// viewport's ScrollPercent to pager.OnScroll. The pager throttles the
// samples and loads the next page once the position passes its threshold.
// A query change resets the pager, which drops the merged collection.
//
// # Errors
//
// A failed action leaves the store unchanged and the status line reads
// "failed to <action>, try again". A 401 from any call ends the session and
// returns to the login form.
package ui
