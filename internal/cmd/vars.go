package cmd

import (
	"fmt"
	"maps"
	"strings"

	"github.com/joho/godotenv"
	"github.com/yoanbernabeu/sshdeploy/internal/security"
)

// collectVars merges dotenv files, in order, then KEY=VALUE pairs.
func collectVars(files, pairs []string) (map[string]string, error) {
	vars := make(map[string]string)
	if len(files) > 0 {
		fileVars, err := godotenv.Read(files...)
		if err != nil {
			return nil, fmt.Errorf("failed to read variable file: %w", err)
		}
		maps.Copy(vars, fileVars)
	}

	flagVars, err := parseVars(pairs)
	if err != nil {
		return nil, err
	}
	maps.Copy(vars, flagVars)
	return vars, nil
}

// parseVars parses repeated KEY=VALUE flags. Later occurrences win.
func parseVars(pairs []string) (map[string]string, error) {
	vars := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid variable %q, use KEY=VALUE", pair)
		}
		if err := security.ValidateScriptVarKey(key); err != nil {
			return nil, fmt.Errorf("invalid variable %q: %w", pair, err)
		}
		vars[key] = value
	}
	return vars, nil
}
