package embedding

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedModel         = errors.New("unsupported embedding model")
	ErrConfiguration            = errors.New("embedding configuration error")
	ErrUnexpectedResponseLength = errors.New("embedding backend returned an unexpected number of vectors")
	ErrEmptyResponse            = errors.New("embedding backend returned no vectors")
)

type UnsupportedModelError struct {
	Model string
}

func (e *UnsupportedModelError) Error() string {
	return fmt.Sprintf("unsupported embedding model %q", e.Model)
}

func (e *UnsupportedModelError) Is(target error) bool {
	return target == ErrUnsupportedModel
}

// ConfigurationError reports a keyword the chosen backend cannot work without.
type ConfigurationError struct {
	Model  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("embedding model %q: %s", e.Model, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func NewConfigurationError(model, reason string) error {
	return &ConfigurationError{Model: model, Reason: reason}
}

// CheckLength guards against providers that drop or duplicate inputs.
func CheckLength(model string, want, got int) error {
	if want == got {
		return nil
	}
	return fmt.Errorf("%s: want %d vectors, got %d: %w", model, want, got, ErrUnexpectedResponseLength)
}
