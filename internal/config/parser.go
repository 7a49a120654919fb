package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	lua "github.com/yuin/gopher-lua"

	"github.com/ZebulonRouseFrantzich/relinstall/internal/platform"
)

// Parser represents a Lua recipe parser with platform detection.
type Parser struct {
	detector platform.Detector
	logger   Logger
}

// NewParser creates a new recipe parser with the given platform detector.
// A nil detector leaves the platform table undefined.
func NewParser(detector platform.Detector) *Parser {
	return &Parser{detector: detector, logger: defaultLogger()}
}

// WithLogger sets the logger and returns the parser.
func (p *Parser) WithLogger(logger Logger) *Parser {
	if logger == nil {
		logger = defaultLogger()
	}
	p.logger = logger
	return p
}

// ParseFile reads and parses the recipe at path. A leading "~" is expanded.
func (p *Parser) ParseFile(ctx context.Context, path string) (*Recipe, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expand recipe path: %w", err)
	}

	f, err := os.Open(expanded)
	if err != nil {
		return nil, fmt.Errorf("open recipe: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxRecipeSize+1))
	if err != nil {
		return nil, fmt.Errorf("read recipe: %w", err)
	}
	if len(data) > MaxRecipeSize {
		return nil, &ParseError{
			Message: "recipe too large",
			Detail:  fmt.Sprintf("%s exceeds %d bytes", path, MaxRecipeSize),
		}
	}

	p.logger.Debug("parsing recipe", "path", expanded, "bytes", len(data))
	return p.ParseString(ctx, string(data))
}

// ParseString parses a Lua recipe from a string.
func (p *Parser) ParseString(ctx context.Context, luaCode string) (*Recipe, error) {
	if len(luaCode) > MaxRecipeSize {
		return nil, &ParseError{
			Message: "recipe too large",
			Detail:  fmt.Sprintf("%d bytes exceeds %d", len(luaCode), MaxRecipeSize),
		}
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultParseTimeout)
		defer cancel()
	}

	L := newSandboxedVM()
	defer L.Close()
	L.SetContext(ctx)

	// Detect platform and inject platform table
	if p.detector != nil {
		platformInfo, err := p.detector.Detect(ctx)
		if err != nil {
			return nil, fmt.Errorf("platform detection failed: %w", err)
		}
		if err := platform.InjectPlatformTable(L, platformInfo); err != nil {
			return nil, fmt.Errorf("inject platform table: %w", err)
		}
	}

	// Execute Lua code
	if err := L.DoString(luaCode); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &ParseError{
				Message: "recipe evaluation timed out",
				Detail:  err.Error(),
				cause:   ctxErr,
			}
		}
		return nil, &ParseError{
			Message: "Lua syntax error",
			Detail:  err.Error(),
		}
	}

	recipe, err := p.extractRecipe(L)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("recipe parsed", "owner", recipe.Owner, "repo", recipe.Repo, "install_dirs", len(recipe.InstallDirs))
	return recipe, nil
}

// ParseError represents a recipe parsing error with friendly message.
type ParseError struct {
	Message string // User-friendly message
	Detail  string // Technical details (raw Lua error)

	cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

func (e *ParseError) Unwrap() error {
	return e.cause
}

// recipeFields lists the keys recognised in the recipe table.
var recipeFields = map[string]bool{
	luaFieldOwner:       true,
	luaFieldRepo:        true,
	luaFieldBinary:      true,
	luaFieldVersion:     true,
	luaFieldInstallDirs: true,
	luaFieldChecksums:   true,
	luaFieldKeyring:     true,
	luaFieldAPIURL:      true,
	luaFieldDownloadURL: true,
}

// extractRecipe extracts the recipe from a Lua state.
// It expects a global "relinstall" table.
func (p *Parser) extractRecipe(L *lua.LState) (*Recipe, error) {
	global := L.GetGlobal(luaGlobalRecipe)
	if global.Type() != lua.LTTable {
		return nil, &ParseError{
			Message: fmt.Sprintf("missing or invalid '%s' table", luaGlobalRecipe),
			Detail:  fmt.Sprintf("expected table, got %s", global.Type()),
		}
	}
	table := global.(*lua.LTable)

	table.ForEach(func(key, _ lua.LValue) {
		if name, ok := key.(lua.LString); !ok || !recipeFields[string(name)] {
			p.logger.Warn("ignoring unknown recipe field", "field", key.String())
		}
	})

	recipe := &Recipe{}
	fields := []struct {
		name string
		dest *string
	}{
		{luaFieldOwner, &recipe.Owner},
		{luaFieldRepo, &recipe.Repo},
		{luaFieldBinary, &recipe.Binary},
		{luaFieldVersion, &recipe.Version},
		{luaFieldChecksums, &recipe.Checksums},
		{luaFieldKeyring, &recipe.Keyring},
		{luaFieldAPIURL, &recipe.APIURL},
		{luaFieldDownloadURL, &recipe.DownloadURL},
	}
	for _, f := range fields {
		v, err := extractString(table, f.name)
		if err != nil {
			return nil, err
		}
		*f.dest = v
	}

	dirs, err := extractInstallDirs(table)
	if err != nil {
		return nil, err
	}
	recipe.InstallDirs = dirs

	// Validate the extracted recipe
	if err := recipe.Validate(); err != nil {
		return nil, &ParseError{
			Message: "invalid recipe",
			Detail:  err.Error(),
			cause:   err,
		}
	}

	return recipe, nil
}

// extractString reads an optional string field. A number is accepted for
// version-like values; other types are an error.
func extractString(table *lua.LTable, name string) (string, error) {
	v := table.RawGetString(name)
	switch v.Type() {
	case lua.LTNil:
		return "", nil
	case lua.LTString, lua.LTNumber:
		return v.String(), nil
	default:
		return "", &ParseError{
			Message: fmt.Sprintf("invalid '%s' field", name),
			Detail:  fmt.Sprintf("expected string, got %s", v.Type()),
		}
	}
}

// extractInstallDirs extracts the install_dirs array in order.
// It skips nil values from platform conditionals.
func extractInstallDirs(table *lua.LTable) ([]string, error) {
	v := table.RawGetString(luaFieldInstallDirs)
	if v.Type() == lua.LTNil {
		return nil, nil
	}
	if v.Type() == lua.LTString {
		return []string{v.String()}, nil
	}
	list, ok := v.(*lua.LTable)
	if !ok {
		return nil, &ParseError{
			Message: fmt.Sprintf("invalid '%s' field", luaFieldInstallDirs),
			Detail:  fmt.Sprintf("expected list of strings, got %s", v.Type()),
		}
	}

	var dirs []string
	for i := 1; i <= list.MaxN(); i++ {
		item := list.RawGetInt(i)
		switch item.Type() {
		case lua.LTNil:
			// platform.when(false, ...) or `cond and "dir" or nil`
			continue
		case lua.LTString:
			dirs = append(dirs, item.String())
		default:
			return nil, &ParseError{
				Message: fmt.Sprintf("invalid '%s' entry", luaFieldInstallDirs),
				Detail:  fmt.Sprintf("entry %d: expected string, got %s", i, item.Type()),
			}
		}
	}
	return dirs, nil
}

// FormatError formats a recipe error for user display.
// In verbose mode, show the raw Lua error. Otherwise, show friendly message.
func FormatError(err error, verbose bool) string {
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		if verbose {
			return fmt.Sprintf("%s\n\nDetails:\n%s", parseErr.Message, parseErr.Detail)
		}
		// Extract the most relevant part of the error
		detail := parseErr.Detail
		if idx := strings.Index(detail, "stack traceback"); idx > 0 {
			detail = strings.TrimSpace(detail[:idx])
		}
		return fmt.Sprintf("%s: %s", parseErr.Message, detail)
	}
	return err.Error()
}
