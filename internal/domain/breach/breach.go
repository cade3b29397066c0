// Package breach models breach records published by the account-breach
// directory and the ports used to look them up and cache them.
package breach

import (
	"errors"
	"time"
)

// ErrNotFound is returned when the directory has no record for a breach name.
var ErrNotFound = errors.New("breach not found")

// Breach is a single incident as published by the breach directory. Only
// public incident metadata is held here; no account data.
type Breach struct {
	Name         string   `json:"name"`
	Title        string   `json:"title"`
	Domain       string   `json:"domain"`
	BreachDate   string   `json:"breachDate"`
	AddedDate    string   `json:"addedDate"`
	ModifiedDate string   `json:"modifiedDate"`
	PwnCount     int64    `json:"pwnCount"`
	Description  string   `json:"description"`
	LogoPath     string   `json:"logoPath,omitempty"`
	DataClasses  []string `json:"dataClasses"`
	IsVerified   bool     `json:"isVerified"`
	IsFabricated bool     `json:"isFabricated"`
	IsSensitive  bool     `json:"isSensitive"`
	IsRetired    bool     `json:"isRetired"`
	IsSpamList   bool     `json:"isSpamList"`
	IsMalware    bool     `json:"isMalware"`
}

// ExposesPasswords reports whether the breach leaked passwords.
func (b Breach) ExposesPasswords() bool {
	for _, dc := range b.DataClasses {
		if dc == "Passwords" {
			return true
		}
	}
	return false
}

// EmailResult is the outcome of an account lookup. A directory miss is a
// normal, non-exposed result.
type EmailResult struct {
	IsExposed   bool
	BreachCount int
	Breaches    []Breach
}

// NewEmailResult builds the result for the given breaches.
func NewEmailResult(breaches []Breach) EmailResult {
	if breaches == nil {
		breaches = []Breach{}
	}
	return EmailResult{
		IsExposed:   len(breaches) > 0,
		BreachCount: len(breaches),
		Breaches:    breaches,
	}
}

// CatalogEntry is a cached breach record with the time it was fetched.
type CatalogEntry struct {
	Breach    Breach
	FetchedAt time.Time
}

// Fresh reports whether the entry is younger than ttl at now.
func (e CatalogEntry) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.FetchedAt) < ttl
}
