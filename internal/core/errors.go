package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfig matches every ConfigError through errors.Is.
var ErrInvalidConfig = errors.New("invalid configuration")

// ConfigError reports an invalid or incomplete configuration value.
type ConfigError struct {
	Key     string
	Value   string
	Valid   []string
	Missing []string
	Msg     string
}

func (e *ConfigError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("%s: missing %s", e.Msg, strings.Join(e.Missing, ", "))
	}
	msg := fmt.Sprintf("received an invalid value %q for %q", e.Value, e.Key)
	if e.Msg != "" {
		msg = e.Msg
	}
	if len(e.Valid) > 0 {
		msg += fmt.Sprintf(". Valid options are: %s", quoteAll(e.Valid))
	}
	return msg
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// InvalidValue builds the error used for unknown names.
func InvalidValue(key, value string, valid ...string) *ConfigError {
	return &ConfigError{Key: key, Value: value, Valid: valid}
}

func quoteAll(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, ", ")
}
