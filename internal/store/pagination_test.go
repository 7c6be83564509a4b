package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	want := OrderCursor{CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), ID: 42}

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

func TestDecodeGarbageCursor(t *testing.T) {
	_, err := DecodeCursor("%%%not-base64")
	assert.Error(t, err)
}

func TestNormalizePage(t *testing.T) {
	page, size := NormalizePage(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultPageSize, size)

	page, size = NormalizePage(3, 500)
	assert.Equal(t, 3, page)
	assert.Equal(t, DefaultPageSize, size)

	_, size = NormalizePage(1, 50)
	assert.Equal(t, 50, size)
}

func TestNewOffsetPage(t *testing.T) {
	p := newOffsetPage([]int{1, 2}, 41, 2, 20)
	assert.Equal(t, 3, p.TotalPages)

	p = newOffsetPage(nil, 0, 1, 20)
	assert.Equal(t, 0, p.TotalPages)
}
