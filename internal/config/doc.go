// Package config loads relinstall recipes: small Lua files that name a
// release and describe where and how to install it.
//
// # Overview
//
// A recipe sets a global "relinstall" table. Every field is optional; flags
// given on the command line override recipe values, and recipe values
// override built-in defaults (see Recipe.Merge).
//
//	relinstall = {
//	  owner = "acme",
//	  repo = "context",
//	  binary = "context",                  -- defaults to repo
//	  version = "v1.4.0",                  -- pin; omit for latest
//	  install_dirs = {
//	    platform.when(platform.is_macos, "/opt/homebrew/bin"),
//	    "/usr/local/bin",
//	    "~/.local/bin",
//	  },
//	  checksums = "checksums.txt",
//	  keyring = "~/.config/acme/release.asc", -- enables signature checks
//	  api_url = "https://api.github.com",
//	  download_url = "https://github.com",
//	}
//
// nil entries in install_dirs, as produced by platform conditionals, are
// skipped.
//
// # Security Model
//
// Recipes run in a gopher-lua VM with the os, io, package, load* and debug
// facilities removed, as well as raw table and metatable access. The
// platform table injected by internal/platform is read-only.
//
// Resource limits:
//   - Recipe size: 1MB
//   - Evaluation timeout: 5 seconds unless the context sets a deadline
//   - Call stack depth: 256 levels
//
// Values are validated after evaluation: names must match
// ^[A-Za-z0-9._-]+$, URLs must be http(s), versions must be semantic
// versions and install_dirs holds at most 32 absolute or ~/ paths.
//
// # Error Types
//
//	type ParseError struct {
//	    Message string  // User-friendly message
//	    Detail  string  // Raw Lua or validation detail
//	}
//
//	type ValidationError struct {
//	    Field   string  // Field that failed validation
//	    Message string  // Error description
//	}
//
// FormatError renders either for the terminal.
package config
