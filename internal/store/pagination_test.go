package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	want := OrderCursor{CreatedAt: time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC), ID: 42}

	got, err := DecodeCursor(EncodeCursor(want))
	require.NoError(t, err)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, want.ID, got.ID)
}

func TestDecodeEmptyCursorStartsAtNewest(t *testing.T) {
	got, err := DecodeCursor("")
	require.NoError(t, err)
	assert.True(t, got.CreatedAt.After(time.Now()))
	assert.Equal(t, int64(1<<63-1), got.ID)
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	_, err := DecodeCursor("%%%")
	assert.ErrorIs(t, err, ErrInvalidCursor)

	_, err = DecodeCursor("bm90LWpzb24=")
	assert.ErrorIs(t, err, ErrInvalidCursor)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, totalPages(0, 20))
	assert.Equal(t, 1, totalPages(20, 20))
	assert.Equal(t, 2, totalPages(21, 20))
}
