package advisory

import (
	"encoding/json"

	"github.com/ahrav/breachcheck/internal/domain/advisory"
	"github.com/ahrav/breachcheck/internal/domain/breach"
)

// exposureContext is what the client already learned from earlier lookups.
type exposureContext struct {
	Email           string          `json:"email" validate:"omitempty,email"`
	Breaches        []breach.Breach `json:"breaches"`
	PasswordExposed bool            `json:"passwordExposed"`
}

func (c *exposureContext) toDomain() advisory.Context {
	if c == nil {
		return advisory.Context{}
	}
	return advisory.Context{
		Email:           c.Email,
		Breaches:        c.Breaches,
		PasswordExposed: c.PasswordExposed,
	}
}

// chatRequest is the payload for a free-form security question.
type chatRequest struct {
	Message string           `json:"message" validate:"required,min=1,max=1000"`
	Context *exposureContext `json:"context"`
}

// recommendationRequest is the payload for tailored recommendations. Every
// field is optional.
type recommendationRequest struct {
	exposureContext
}

// requirements mirrors advisory.Requirements on the wire.
type requirements struct {
	Length           int   `json:"length" validate:"omitempty,min=8,max=128"`
	IncludeSymbols   *bool `json:"includeSymbols"`
	IncludeNumbers   *bool `json:"includeNumbers"`
	IncludeUppercase *bool `json:"includeUppercase"`
	IncludeLowercase *bool `json:"includeLowercase"`
}

// generateRequest is the payload for password suggestions.
type generateRequest struct {
	Requirements *requirements `json:"requirements"`
}

func (g generateRequest) toDomain() advisory.Requirements {
	if g.Requirements == nil {
		return advisory.Requirements{}
	}
	r := g.Requirements
	return advisory.Requirements{
		Length:           r.Length,
		IncludeSymbols:   r.IncludeSymbols,
		IncludeNumbers:   r.IncludeNumbers,
		IncludeUppercase: r.IncludeUppercase,
		IncludeLowercase: r.IncludeLowercase,
	}
}

// chatResponse represents the response for a chat question.
type chatResponse struct {
	Success  bool   `json:"success"`
	Response string `json:"response"`
}

// Encode implements the web.Encoder interface.
func (cr chatResponse) Encode() ([]byte, string, error) {
	data, err := json.Marshal(cr)
	if err != nil {
		return nil, "", err
	}
	return data, "application/json", nil
}

// recommendationResponse represents the response for recommendations.
type recommendationResponse struct {
	Success         bool   `json:"success"`
	Recommendations string `json:"recommendations"`
}

// Encode implements the web.Encoder interface.
func (rr recommendationResponse) Encode() ([]byte, string, error) {
	data, err := json.Marshal(rr)
	if err != nil {
		return nil, "", err
	}
	return data, "application/json", nil
}

// generateResponse represents the response for password suggestions.
type generateResponse struct {
	Success   bool     `json:"success"`
	Passwords []string `json:"passwords"`
}

// Encode implements the web.Encoder interface.
func (gr generateResponse) Encode() ([]byte, string, error) {
	data, err := json.Marshal(gr)
	if err != nil {
		return nil, "", err
	}
	return data, "application/json", nil
}
