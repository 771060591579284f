package model

import (
	"github.com/aethon-lab/mnemosyne/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Persona configures who the assistant answers about. The assistant
// speaks to a third party about the subject, never as the subject.
// Prompt optionally replaces the built-in system prompt template; it
// may reference {{.Subject}} and {{.Description}}.
type Persona struct {
	Subject     string
	Description string
	Prompt      string
}

// DefaultPersona is used when no persona configuration is provided.
func DefaultPersona() Persona {
	return Persona{
		Subject:     "the profile owner",
		Description: "their background and projects",
	}
}

// Validate checks required persona fields
func (p Persona) Validate() error {
	if p.Subject == "" {
		return goerr.Wrap(types.ErrValidation, "persona subject is required")
	}
	return nil
}
