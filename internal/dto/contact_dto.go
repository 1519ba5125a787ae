package dto

// Contact result message codes returned to the browser.
const (
	ContactErrorGeneric         = "error_generic"
	ContactErrorRateLimit       = "error_rate_limit"
	// ContactErrorTooManyRequests is the burst limiter rejection. It is unrelated
	// to the per-source cooldown and carries no remaining seconds.
	ContactErrorTooManyRequests = "error_too_many_requests"
)

// ContactRequest defines the payload accepted by the contact form endpoint.
type ContactRequest struct {
	Name           string `json:"name" form:"name" validate:"required,min=2,max=100"`
	Phone          string `json:"phone" form:"phone" validate:"required,phone"`
	Email          string `json:"email" form:"email" validate:"required,email,max=160"`
	Service        string `json:"service" form:"service" validate:"required,service"`
	Message        string `json:"message" form:"message" validate:"omitempty,max=2000"`
	LineID         string `json:"lineId" form:"lineId" validate:"omitempty,max=64"`
	SocialPlatform string `json:"socialPlatform" form:"socialPlatform" validate:"omitempty,oneof=line whatsapp wechat telegram facebook"`
	Locale         string `json:"locale" form:"locale" validate:"omitempty,sitelocale"`
	Honeypot       string `json:"website" form:"website"`
	SourceKey      string `json:"-" form:"-"`
}

// ContactResult is the response body of a contact submission.
type ContactResult struct {
	Success   bool                `json:"success"`
	Errors    map[string][]string `json:"errors,omitempty"`
	Message   string              `json:"message,omitempty"`
	Remaining int                 `json:"remaining,omitempty"`
}
