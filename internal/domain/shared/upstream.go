// Package shared provides domain types used across the breach, exposure and
// advisory packages.
package shared

// Upstream identifies a third-party service the application relays to.
type Upstream string

const (
	// UpstreamBreachDirectory is the account-breach directory (HIBP v3).
	UpstreamBreachDirectory Upstream = "breach_directory"

	// UpstreamPasswordRange is the public password frequency range API.
	UpstreamPasswordRange Upstream = "password_range"

	// UpstreamAdvisory is the language-model chat completion backend.
	UpstreamAdvisory Upstream = "advisory"
)

func (u Upstream) String() string { return string(u) }
