// Package config loads keybridge runtime configuration.
//
// Configuration is layered, higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  4. Command Line Flags      │  ← Highest priority (applied by cmd)
//	├─────────────────────────────┤
//	│  3. Environment Variables   │  ← KEYBRIDGE_*
//	├─────────────────────────────┤
//	│  2. Config File             │  ← .toml, .yaml or .yml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// Durations are written as Go duration strings ("16ms"); a bare integer is
// read as milliseconds.
//
// # Basic Usage
//
//	cfg, err := config.Load("keybridge.toml")
//	if err != nil {
//		return err
//	}
//	b := bridge.New(cfg.Bridge)
package config
