package breach

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewEmailResult(t *testing.T) {
	empty := NewEmailResult(nil)
	assert.False(t, empty.IsExposed)
	assert.Zero(t, empty.BreachCount)
	assert.NotNil(t, empty.Breaches)

	res := NewEmailResult([]Breach{{Name: "Adobe"}, {Name: "LinkedIn"}})
	assert.True(t, res.IsExposed)
	assert.Equal(t, 2, res.BreachCount)
}

func TestBreachExposesPasswords(t *testing.T) {
	assert.True(t, Breach{DataClasses: []string{"Email addresses", "Passwords"}}.ExposesPasswords())
	assert.False(t, Breach{DataClasses: []string{"Email addresses"}}.ExposesPasswords())
}

func TestCatalogEntryFresh(t *testing.T) {
	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	e := CatalogEntry{FetchedAt: now.Add(-time.Hour)}

	assert.True(t, e.Fresh(now, 2*time.Hour))
	assert.False(t, e.Fresh(now, time.Hour))
	assert.False(t, e.Fresh(now, 0))
}
