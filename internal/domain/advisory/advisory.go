// Package advisory holds the types exchanged with the language-model backend
// and the prompts that frame each advisory request.
package advisory

import (
	"context"
	"errors"
	"strings"

	"github.com/ahrav/breachcheck/internal/domain/breach"
)

// ErrFeatureDisabled is returned by the completion port when no backend is
// configured. Services translate it into the fixed disabled messages below.
var ErrFeatureDisabled = errors.New("advisory backend disabled")

const (
	// DisabledMessage is returned in place of chat and recommendation answers
	// when the backend is not configured.
	DisabledMessage = "AI features are currently disabled. Please add your OpenAI API key to enable AI-powered recommendations."

	// DisabledPasswordMessage is returned as the single password suggestion
	// when the backend is not configured.
	DisabledPasswordMessage = "AI features are currently disabled. Please add your OpenAI API key to enable password generation."

	// PlaceholderAPIKey is the sample key shipped in example env files. It is
	// treated the same as a missing key.
	PlaceholderAPIKey = "sk-placeholder-key-replace-with-real-key"
)

// Role is the author of a chat message.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message is one turn of a chat completion request.
type Message struct {
	Role    Role
	Content string
}

// CompletionRequest is a single chat completion call.
type CompletionRequest struct {
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// Completer sends a completion request to the language model and returns the
// text of the first choice.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Context is what the caller already knows about the user's exposure.
type Context struct {
	Email           string
	Breaches        []breach.Breach
	PasswordExposed bool
}

// EmailDomain returns the part of the email after '@', or "" if there is none.
func (c Context) EmailDomain() string {
	_, domain, ok := strings.Cut(c.Email, "@")
	if !ok {
		return ""
	}
	return domain
}

// Requirements constrain generated password suggestions. Nil flags default to
// true.
type Requirements struct {
	Length           int
	IncludeSymbols   *bool
	IncludeNumbers   *bool
	IncludeUppercase *bool
	IncludeLowercase *bool
}

// DefaultPasswordLength is used when Requirements.Length is zero.
const DefaultPasswordLength = 16

// SuggestionCount is the number of passwords requested per generation.
const SuggestionCount = 5

func flag(b *bool) bool { return b == nil || *b }

// Normalized returns a copy with defaults applied and every flag set.
func (r Requirements) Normalized() Requirements {
	t := func(v bool) *bool { return &v }

	length := r.Length
	if length <= 0 {
		length = DefaultPasswordLength
	}

	return Requirements{
		Length:           length,
		IncludeSymbols:   t(flag(r.IncludeSymbols)),
		IncludeNumbers:   t(flag(r.IncludeNumbers)),
		IncludeUppercase: t(flag(r.IncludeUppercase)),
		IncludeLowercase: t(flag(r.IncludeLowercase)),
	}
}
