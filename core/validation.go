package core

import "fmt"

// ValidateProperty validates a Property according to domain rules.
//
// Validation rules:
//   - ID must not be empty
//   - Name must not be empty
//
// A record failing these rules is corrupt and must be excluded from
// search results rather than surfaced to callers.
func ValidateProperty(p *Property) error {
	if p == nil {
		return fmt.Errorf("%w: property is nil", ErrCorruptProperty)
	}

	if p.ID == "" {
		return fmt.Errorf("%w: %w", ErrCorruptProperty, ErrMissingID)
	}

	if p.Name == "" {
		return fmt.Errorf("%w: %w", ErrCorruptProperty, ErrMissingName)
	}

	return nil
}

// ValidateRole validates that a message role has a known value.
func ValidateRole(role Role) error {
	if role != RoleUser && role != RoleAssistant {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	return nil
}

// ValidateMessage validates a chat message before it is appended to a session.
func ValidateMessage(msg Message) error {
	if err := ValidateRole(msg.Role); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}
	if msg.Content == "" {
		return fmt.Errorf("%w: empty message content", ErrInvalidSession)
	}
	return nil
}
