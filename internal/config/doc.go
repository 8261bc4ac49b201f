// Package config loads the stash TOML configuration.
//
// # Resolution
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/stash/config.toml
//  3. If the file doesn't exist, start from Default()
//  4. Apply STASH_API_URL, STASH_LOG_LEVEL, STASH_REDIS_ADDR and
//     STASH_TRACING_ENDPOINT from the environment
//
// A missing file is not an error. A malformed one is.
//
// # Example
//
//	api_url = "http://nas.local:8080"
//	page_size = 20
//	state_dir = "~/.local/state/stash"
//	refresh_seconds = 30
//
//	[log]
//	level = "info"
//	format = "json"        # or "console"
//	path = ""              # defaults to <state_dir>/stash.log
//
//	[session]
//	redis_addr = ""        # set to keep the session in redis instead of files
//	redis_password = ""
//	redis_db = 0
//
//	[tracing]
//	endpoint = ""          # OTLP/HTTP collector host:port
//	insecure = true
//	sample_ratio = 1.0
//
//	[scroll]
//	threshold = 0.7
//	throttle_ms = 200
//
// Paths accept a leading ~ and are made absolute.
package config
