package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/yoanbernabeu/sshdeploy/internal/constants"
	"github.com/yoanbernabeu/sshdeploy/internal/security"
)

var instanceIDRegex = regexp.MustCompile(`^i-[0-9a-f]{8}([0-9a-f]{9})?$`)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors holds multiple validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// HasErrors returns true if there are validation errors
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// ValidateProjectConfig validates the package configuration
func ValidateProjectConfig(config *ProjectConfig) ValidationErrors {
	var errors ValidationErrors

	if config.Name != "" {
		if err := security.ValidateAppName(config.Name); err != nil {
			errors = append(errors, ValidationError{Field: "name", Message: err.Error()})
		}
	}

	for i, upload := range config.Uploads {
		if upload.Source == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("uploads[%d].source", i),
				Message: "upload source is required",
			})
		}
		if err := security.ValidateRemotePath(upload.Target); err != nil {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("uploads[%d].target", i),
				Message: err.Error(),
			})
		}
	}

	if config.Script.Path == "" && len(config.Uploads) == 0 {
		errors = append(errors, ValidationError{
			Field:   "script.path",
			Message: "a script or at least one upload is required",
		})
	}

	if config.Script.Path != "" {
		if err := security.ValidateRemotePath(filepath.Base(config.Script.Path)); err != nil {
			errors = append(errors, ValidationError{Field: "script.path", Message: err.Error()})
		}
	}

	if err := security.ValidateBinName(config.Script.Bin); err != nil {
		errors = append(errors, ValidationError{Field: "script.bin", Message: err.Error()})
	}

	for key := range config.Script.Vars {
		if err := security.ValidateScriptVarKey(key); err != nil {
			errors = append(errors, ValidationError{
				Field:   "script.vars." + key,
				Message: err.Error(),
			})
		}
	}

	return errors
}

// ValidateServerConfig validates a server configuration
func ValidateServerConfig(config *ServerConfig) ValidationErrors {
	var errors ValidationErrors

	if config.Host == "" {
		errors = append(errors, ValidationError{
			Field:   "host",
			Message: "server host is required",
		})
	} else if err := security.ValidateHostname(config.Host); err != nil {
		errors = append(errors, ValidationError{Field: "host", Message: err.Error()})
	}

	if config.User == "" {
		errors = append(errors, ValidationError{
			Field:   "user",
			Message: "server user is required",
		})
	} else if err := security.ValidateUnixUser(config.User); err != nil {
		errors = append(errors, ValidationError{Field: "user", Message: err.Error()})
	}

	if config.KeyPath == "" && config.KeySource == nil {
		errors = append(errors, ValidationError{
			Field:   "key_path",
			Message: "either key_path or key_source is required",
		})
	}

	if src := config.KeySource; src != nil {
		if src.Provider != constants.ProviderAWS {
			errors = append(errors, ValidationError{
				Field:   "key_source.provider",
				Message: fmt.Sprintf("unsupported provider %q (use %s)", src.Provider, constants.ProviderAWS),
			})
		}
		if src.Service == "" || src.Variable == "" {
			errors = append(errors, ValidationError{
				Field:   "key_source",
				Message: "service and variable are required",
			})
		}
	}

	if ic := config.InstanceConnect; ic != nil && !instanceIDRegex.MatchString(ic.InstanceID) {
		errors = append(errors, ValidationError{
			Field:   "instance_connect.instance_id",
			Message: "instance id must look like i-0123456789abcdef0",
		})
	}

	if config.InitialPath != "" {
		if err := security.ValidateRemotePath(config.InitialPath); err != nil {
			errors = append(errors, ValidationError{Field: "initial_path", Message: err.Error()})
		}
	}

	if err := security.ValidateBinName(config.Bin); err != nil {
		errors = append(errors, ValidationError{Field: "bin", Message: err.Error()})
	}

	return errors
}
