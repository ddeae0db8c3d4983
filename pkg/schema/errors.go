package schema

import (
	"errors"
	"fmt"
)

// ErrConfiguration matches every *ConfigError via errors.Is.
var ErrConfiguration = errors.New("schema: configuration error")

// ConfigError reports a schema node that cannot be rendered. Path locates the
// node by its data path (list children are marked with "[]"), falling back to
// its position when the node has no dataIndex.
type ConfigError struct {
	Path        string
	ControlType string
	Reason      string
}

func (e *ConfigError) Error() string {
	if e == nil {
		return ErrConfiguration.Error()
	}
	if e.ControlType != "" {
		return fmt.Sprintf("schema: %s (%s): %s", e.Path, e.ControlType, e.Reason)
	}
	return fmt.Sprintf("schema: %s: %s", e.Path, e.Reason)
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrConfiguration
}

// NewConfigError builds a ConfigError for node at path.
func NewConfigError(path string, node Node, reason string) *ConfigError {
	return &ConfigError{Path: path, ControlType: node.ControlType, Reason: reason}
}
