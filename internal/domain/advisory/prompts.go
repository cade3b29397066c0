package advisory

import (
	"fmt"
	"strings"
)

const assistantPreamble = `You are a helpful cybersecurity assistant for a breach detection service.
You help users understand breach results and give security recommendations.

Guidelines:
- Explain clearly and without jargon
- Give actionable security advice
- Be empathetic about security concerns
- Focus on practical steps users can take
- Never ask for, repeat or store passwords or other secrets
- Always recommend enabling 2FA when possible`

const recommenderPreamble = `You are a cybersecurity expert giving personalized security recommendations.
Based on the breach data provided, give specific, actionable advice for improving security.
Focus on practical steps the user can take immediately.`

const generatorPreamble = `You are a password security expert. Generate %d secure passwords based on the requirements.
Each password must be unique, strong and meet the specified criteria.
Return only the passwords, one per line, with no additional text.`

// ChatRequest frames a free-form user question with what is known about the
// user's exposure. Only the email domain is forwarded, never the address.
func ChatRequest(message string, c Context) CompletionRequest {
	var sb strings.Builder
	sb.WriteString(assistantPreamble)

	if d := c.EmailDomain(); d != "" {
		fmt.Fprintf(&sb, "\n\nUser's email domain: %s", d)
	}

	if len(c.Breaches) > 0 {
		fmt.Fprintf(&sb, "\n\nUser's breach history: found in %d breach(es)", len(c.Breaches))
		for _, b := range c.Breaches {
			fmt.Fprintf(&sb, "\n- %s: %s", b.Name, b.Description)
		}
	}

	if c.PasswordExposed {
		sb.WriteString("\n\nUser's password has been exposed in data breaches.")
	}

	return CompletionRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: sb.String()},
			{Role: RoleUser, Content: message},
		},
		MaxTokens:   500,
		Temperature: 0.7,
	}
}

// RecommendationRequest asks for recommendations tailored to c.
func RecommendationRequest(c Context) CompletionRequest {
	var sb strings.Builder

	if len(c.Breaches) > 0 {
		var leaked []string
		fmt.Fprintf(&sb, "User's email was found in %d data breach(es):\n", len(c.Breaches))
		for _, b := range c.Breaches {
			fmt.Fprintf(&sb, "- %s (%s): %s\n", b.Name, b.BreachDate, b.Description)
			fmt.Fprintf(&sb, "  Data exposed: %s\n", strings.Join(b.DataClasses, ", "))
			if b.ExposesPasswords() {
				leaked = append(leaked, b.Name)
			}
		}
		if len(leaked) > 0 {
			fmt.Fprintf(&sb, "Passwords leaked in: %s. Any password used on those sites must be changed everywhere it was reused.\n",
				strings.Join(leaked, ", "))
		}
	}

	if c.PasswordExposed {
		sb.WriteString("\nUser's password has been exposed in data breaches and should be changed immediately.\n")
	}

	if d := c.EmailDomain(); d != "" {
		fmt.Fprintf(&sb, "\nEmail domain: %s", d)
	}

	return CompletionRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: recommenderPreamble},
			{Role: RoleUser, Content: "Please provide security recommendations based on this data: " + sb.String()},
		},
		MaxTokens:   800,
		Temperature: 0.5,
	}
}

// PasswordRequest asks for SuggestionCount passwords meeting r.
func PasswordRequest(r Requirements) CompletionRequest {
	r = r.Normalized()

	user := fmt.Sprintf(`Generate %d secure passwords with these requirements:
- Length: %d characters
- Include symbols: %t
- Include numbers: %t
- Include uppercase: %t
- Include lowercase: %t`,
		SuggestionCount,
		r.Length,
		*r.IncludeSymbols,
		*r.IncludeNumbers,
		*r.IncludeUppercase,
		*r.IncludeLowercase,
	)

	return CompletionRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: fmt.Sprintf(generatorPreamble, SuggestionCount)},
			{Role: RoleUser, Content: user},
		},
		MaxTokens:   200,
		Temperature: 0.8,
	}
}

// ParsePasswords splits a generator answer into one password per line,
// trimming whitespace and dropping blank lines.
func ParsePasswords(answer string) []string {
	lines := strings.Split(answer, "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if p := strings.TrimSpace(l); p != "" {
			out = append(out, p)
		}
	}
	return out
}
