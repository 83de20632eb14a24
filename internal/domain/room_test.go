package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rolltable/rolltable/internal/domain"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Table One", "table-one"},
		{"already slugged", "table-one", "table-one"},
		{"punctuation collapses", "The GM's  Table!", "the-gm-s-table"},
		{"leading and trailing junk", "  ~Table~  ", "table"},
		{"digits survive", "Session 42", "session-42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.Slugify(tt.in))
		})
	}
}

func TestNewRoomID(t *testing.T) {
	assert.Equal(t, "table-one-1700000000000", domain.NewRoomID("Table One", 1_700_000_000_000))
}

func TestDocumentDefaultsCoverRequiredFields(t *testing.T) {
	fields := domain.DocumentFields()
	assert.Len(t, domain.DocumentDefaults, len(fields))
	for _, field := range fields {
		assert.Contains(t, domain.DocumentDefaults, field)
	}
}
