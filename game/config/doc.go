// Package config provides level preset management for the rolling-block server.
//
// The config package handles:
//   - Loading presets from .json, .yaml and .yml files
//   - Structural validation and, for fixed layouts, a solvability check
//   - Default preset selection
//   - Preset discovery, listing and saving
//
// Preset Format:
//
// A preset is either fixed or generated. A fixed preset carries a layout and
// a start cell:
//
//	{
//	  "name": "Classic",
//	  "layout": ["NNNHH", "NNNNN", "HNNNG"],
//	  "start": {"x": 0, "z": 0}
//	}
//
// A generated preset carries generator parameters instead; a non-zero seed
// makes every session on it play the same board:
//
//	name: Daily
//	seed: 20261016
//	generate:
//	  width: 7
//	  depth: 7
//	  hole_probability: 0.15
//	  min_passable_cells: 9
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	levelConfig, err := manager.LoadConfig("easy")
//	defaultConfig := manager.GetDefault()
//	presets, err := manager.ListConfigs()
package config
