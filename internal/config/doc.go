// Package config loads the product list configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/productlist/config.toml (default)
//  3. If the config file doesn't exist, fall back to defaults
//  4. PRODUCTLIST_* environment variables override file values
//
// LoadDotEnv can be called first to populate the environment from a .env file.
//
// # TOML Format
//
//	data_dir = "~/.local/share/productlist"
//	log_level = "info"
//
//	[storage]
//	driver = "file"          # memory | file | postgres | redis
//	dsn = "postgres://localhost/productlist?sslmode=disable"
//	redis_addr = "127.0.0.1:6379"
//
//	[network]
//	probe_url = "https://api.luxury-retail.com/health"
//	probe_interval = "10s"
//
//	[container]
//	url = "ws://127.0.0.1:3000/bridge"
//	allowed_origins = ["http://127.0.0.1:3000"]
//
//	[apps]
//	app2 = "http://127.0.0.1:5174"
//
//	[bridge]
//	url = "127.0.0.1:7490"
//	platform = "ios"
//
//	[sync]
//	schedule = "@every 5m"
//	replay_per_second = 5.0
//
//	[metrics]
//	addr = "127.0.0.1:9464"
//
// Every field is optional. Tilde expansion is applied to data_dir.
//
// # Defaults
//
//   - Data directory: ~/.local/share/productlist (cache.json and productlist.log)
//   - Storage driver: file
//   - Network: no probe URL, the app assumes it is online
//   - Container: none, selections go straight to app2
//   - Bridge: none, an in-process simulator answers native feature calls
//
// # Environment
//
//	PRODUCTLIST_DATA_DIR, PRODUCTLIST_LOG_LEVEL, PRODUCTLIST_STORAGE_DRIVER,
//	PRODUCTLIST_STORAGE_DSN, PRODUCTLIST_REDIS_ADDR, PRODUCTLIST_PROBE_URL,
//	PRODUCTLIST_PROBE_INTERVAL, PRODUCTLIST_CONTAINER_URL,
//	PRODUCTLIST_ALLOWED_ORIGINS (comma separated), PRODUCTLIST_APP2_URL,
//	PRODUCTLIST_BRIDGE_URL, PRODUCTLIST_PLATFORM, PRODUCTLIST_SYNC_SCHEDULE,
//	PRODUCTLIST_REPLAYS_PER_SECOND, PRODUCTLIST_METRICS_ADDR
//
// Missing config files are not an error. Parse failures and invalid durations are.
package config
