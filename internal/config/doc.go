// Package config loads vwsctl settings.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/vws/config.toml (default)
//  3. If the file doesn't exist, start from Default()
//  4. Apply environment variable overrides
//
// Files ending in .yaml or .yml are parsed as YAML; everything else is TOML.
// Both formats share the same keys.
//
// # Environment Overrides
//
//   - VWS_SERVER_ACCESS_KEY, VWS_SERVER_SECRET_KEY: management key pair
//   - VWS_CLIENT_ACCESS_KEY, VWS_CLIENT_SECRET_KEY: query key pair
//   - VWS_BASE_URL: management endpoint
//   - VWQ_BASE_URL: query endpoint
//
// Empty environment values are ignored.
//
// # TOML Format
//
//	log_level = "info"
//	theme = "Nightfox"
//
//	[server]
//	access_key = "..."
//	secret_key = "..."
//	base_url = "https://vws.vuforia.com"
//
//	[client]
//	access_key = "..."
//	secret_key = "..."
//	base_url = "https://cloudreco.vuforia.com"
//
//	[http]
//	timeout = "30s"          # or connect_timeout + read_timeout
//	skip_verify = false
//	rate_limit = 0           # requests per second, 0 disables
//	rate_burst = 1
//
//	[wait]
//	poll_interval = "500ms"
//	timeout = "5m"
//	max_attempts = 0         # 0 means bounded by timeout only
//
// Durations accept Go duration strings or plain seconds ("0.5").
//
// Setting only connect_timeout and read_timeout replaces the total timeout
// with the two phase limits.
package config
