// Package app is the composition root for stash.
//
// # Startup
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> config.Load()        TOML + STASH_* env overrides
//	       ├─────> logging.New()        zap, JSON to <state_dir>/stash.log
//	       ├─────> tracing.Init()       OTLP exporter when an endpoint is set
//	       ├─────> openBackend()        redis or file session backend
//	       ├─────> nas.NewClient()      bearer token from the session
//	       ├─────> state.New()          the shared store
//	       ├─────> restore()            token, snapshot, FetchUser
//	       ├─────> pager.New()          drives Store.FetchFiles
//	       ├─────> StartRefresher()     background settings refresh
//	       └─────> ui.Run()             blocks until quit
//
// A token whose exp claim has passed is cleared during restore without
// being sent. A token the server answers with 401 triggers Logout.
//
// # Background Refresh
//
// The refresher reloads the user record and writes the snapshot every
// refresh interval (default 30s). Consecutive failures double the delay up
// to five minutes; one success resets it. A 401 is reported to the UI once
// through Options.Expired so it can show the login form.
//
// The refresher never touches the file collection. Pagination stays with
// the pager, driven by scrolling.
package app
