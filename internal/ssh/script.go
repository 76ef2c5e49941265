package ssh

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SubstituteVars replaces every %KEY% token in script with vars[KEY]. Keys are
// matched literally and case-sensitively; keys absent from the script are
// ignored. Keys are applied in sorted order so the result does not depend on
// map iteration.
func SubstituteVars(script string, vars map[string]string) string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		script = strings.ReplaceAll(script, "%"+k+"%", vars[k])
	}
	return script
}

// LoadScript reads a local script template and applies SubstituteVars.
func LoadScript(path string, vars map[string]string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read script: %w", err)
	}
	return SubstituteVars(string(data), vars), nil
}

// RemoteScriptName is where an uploaded script lands, relative to the
// remote user's home directory.
func RemoteScriptName(scriptPath string) string {
	return filepath.Base(scriptPath)
}
