package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulseboard/internal/identity"
)

// Principals registered within one request share a creation timestamp, so the
// listing must fall back to insertion order rather than map iteration.
func TestMemoryListStableOrderOnTimestampTies(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	created := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)

	emails := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		email := fmt.Sprintf("person%d@example.edu", i)
		emails = append(emails, email)
		require.NoError(t, mem.Create(ctx, &identity.Principal{
			ID:        uuid.New(),
			Email:     email,
			Name:      "Test Person",
			Role:      identity.RoleEmployee,
			Sector:    "marketing",
			Active:    true,
			CreatedAt: created,
			UpdatedAt: created,
		}))
	}

	for i := 0; i < 20; i++ {
		listed, total, err := mem.List(ctx, Filter{}, 0, 0)
		require.NoError(t, err)
		require.Equal(t, 5, total)
		got := make([]string, 0, len(listed))
		for _, p := range listed {
			got = append(got, p.Email)
		}
		assert.Equal(t, emails, got)
	}
}
