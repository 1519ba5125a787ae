package dto

// NavItem is a localized menu entry.
type NavItem struct {
	Key      string    `json:"key"`
	Label    string    `json:"label"`
	Href     string    `json:"href"`
	External bool      `json:"external,omitempty"`
	Children []NavItem `json:"children,omitempty"`
}

// NavigationResponse is the menu for one locale.
type NavigationResponse struct {
	Locale string    `json:"locale"`
	Items  []NavItem `json:"items"`
}

// AlternateLink is an hreflang alternate of a page.
type AlternateLink struct {
	Hreflang string `json:"hreflang"`
	Href     string `json:"href"`
}

// SEOResponse carries the head metadata for one localized page.
type SEOResponse struct {
	Locale         string                   `json:"locale"`
	Path           string                   `json:"path"`
	Title          string                   `json:"title"`
	Canonical      string                   `json:"canonical"`
	Alternates     []AlternateLink          `json:"alternates"`
	StructuredData []map[string]interface{} `json:"structured_data"`
}
