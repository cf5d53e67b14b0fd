// Package config loads the filingqa TOML configuration.
//
// A file may set any subset of keys; the rest keep their defaults:
//
//	[paths]
//	raw = "data/raw"
//	processed = "data/processed"
//	index = "data/index"
//
//	[ai]
//	embedding_host = "http://localhost:11434/v1"
//	embedding_model = "all-minilm"
//
//	[search]
//	top_k = 10
//	timeout = "30s"
//
//	[[companies]]
//	ticker = "AAPL"
//	name = "Apple"
package config
