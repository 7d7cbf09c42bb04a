// Package config provides loading and environment overlay for the Beryl
// runtime configuration. It exposes a Default() baseline, a JSON file loader,
// and a BERYL_* environment overlay.
//
// Example:
//
//	cfg := config.Default()
//	if fileCfg, err := config.Load("/etc/beryl.json"); err == nil {
//	    cfg = fileCfg
//	}
//	config.FromEnv(&cfg)
//	if err := cfg.Validate(); err != nil { ... }
package config
