package config

import "time"

// Lua schema field names and globals
const (
	luaGlobalRecipe     = "relinstall"
	luaFieldOwner       = "owner"
	luaFieldRepo        = "repo"
	luaFieldBinary      = "binary"
	luaFieldVersion     = "version"
	luaFieldInstallDirs = "install_dirs"
	luaFieldChecksums   = "checksums"
	luaFieldKeyring     = "keyring"
	luaFieldAPIURL      = "api_url"
	luaFieldDownloadURL = "download_url"
)

// Resource limits for recipe evaluation
const (
	// MaxRecipeSize is the largest recipe file accepted (1 MB).
	MaxRecipeSize = 1 << 20
	// MaxInstallDirs caps the install_dirs candidate list.
	MaxInstallDirs = 32
	// MaxFieldLength caps every string value in a recipe.
	MaxFieldLength = 4096
	// DefaultParseTimeout applies when the context has no deadline.
	DefaultParseTimeout = 5 * time.Second

	luaCallStackSize = 256
	luaRegistrySize  = 1024 * 8
)
