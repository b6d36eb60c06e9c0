// Package config provides level pack management for the Sokoban server.
//
// The config package handles:
//   - Loading level packs (plain-text collections) from a levels directory
//   - A tutorial pack compiled into the binary as "default"
//   - Pack discovery and listing with level and box counts
//   - Validating and saving uploaded packs
//
// Pack Format:
//
// Packs are .txt files in the levels directory. The pack id is the file stem;
// the display name is the first non-puzzle line before the first level, if
// any. A file named default.txt replaces the embedded pack.
//
// Usage:
//
//	manager, err := config.NewManager("levels")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	pack, err := manager.LoadPack("microban")
//	id, defaultPack := manager.GetDefault()
//	packs, err := manager.ListPacks()
package config
