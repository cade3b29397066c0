package breach

import (
	"encoding/json"

	"github.com/ahrav/breachcheck/internal/domain/breach"
	"github.com/ahrav/breachcheck/internal/domain/exposure"
)

// emailRequest is the payload for an account breach lookup.
type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// FieldMessages implements errs.FieldMessager.
func (emailRequest) FieldMessages() map[string]string {
	return map[string]string{
		"email.required": "Email address is required",
	}
}

// passwordRequest is the payload for a password exposure check.
type passwordRequest struct {
	Password string `json:"password" validate:"required,min=1,max=100"`
}

// FieldMessages implements errs.FieldMessager.
func (passwordRequest) FieldMessages() map[string]string {
	return map[string]string{
		"password.required": "Password is required",
		"password.min":      "Password cannot be empty",
		"password.max":      "Password is too long",
	}
}

// emailResponse represents the response for an account breach lookup.
type emailResponse struct {
	Success     bool            `json:"success"`
	Email       string          `json:"email"`
	IsExposed   bool            `json:"isExposed"`
	BreachCount int             `json:"breachCount"`
	Breaches    []breach.Breach `json:"breaches"`
}

func toEmailResponse(email string, res breach.EmailResult) emailResponse {
	breaches := res.Breaches
	if breaches == nil {
		breaches = []breach.Breach{}
	}
	return emailResponse{
		Success:     true,
		Email:       email,
		IsExposed:   res.IsExposed,
		BreachCount: res.BreachCount,
		Breaches:    breaches,
	}
}

// Encode implements the web.Encoder interface.
func (er emailResponse) Encode() ([]byte, string, error) {
	data, err := json.Marshal(er)
	if err != nil {
		return nil, "", err
	}
	return data, "application/json", nil
}

// passwordResponse represents the response for a password exposure check.
type passwordResponse struct {
	Success       bool   `json:"success"`
	IsExposed     bool   `json:"isExposed"`
	ExposureCount int64  `json:"exposureCount"`
	RiskLevel     string `json:"riskLevel"`
}

func toPasswordResponse(v exposure.Verdict) passwordResponse {
	return passwordResponse{
		Success:       true,
		IsExposed:     v.IsExposed,
		ExposureCount: v.ExposureCount,
		RiskLevel:     v.RiskLevel.String(),
	}
}

// Encode implements the web.Encoder interface.
func (pr passwordResponse) Encode() ([]byte, string, error) {
	data, err := json.Marshal(pr)
	if err != nil {
		return nil, "", err
	}
	return data, "application/json", nil
}

// detailsResponse represents the response for a single breach lookup.
type detailsResponse struct {
	Success bool          `json:"success"`
	Breach  breach.Breach `json:"breach"`
}

// Encode implements the web.Encoder interface.
func (dr detailsResponse) Encode() ([]byte, string, error) {
	data, err := json.Marshal(dr)
	if err != nil {
		return nil, "", err
	}
	return data, "application/json", nil
}
