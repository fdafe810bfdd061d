package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	entryDate := time.Date(2026, 3, 14, 9, 26, 53, 589793238, time.UTC)
	createdAt := time.Date(2026, 3, 14, 9, 27, 0, 0, time.UTC)

	token := EncodeToken(entryDate, createdAt)
	gotEntryDate, gotCreatedAt, err := DecodeToken(token)

	require.NoError(t, err)
	assert.True(t, gotEntryDate.Equal(entryDate))
	assert.True(t, gotCreatedAt.Equal(createdAt))
}

func TestDecodeToken_InvalidBase64(t *testing.T) {
	_, _, err := DecodeToken("not-base64!!!")
	assert.Error(t, err)
}

func TestDecodeToken_MissingSeparator(t *testing.T) {
	token := base64.StdEncoding.EncodeToString([]byte("2026-03-14T09:26:53Z"))
	_, _, err := DecodeToken(token)
	assert.Error(t, err)
}

func TestDecodeToken_UnparseableTimes(t *testing.T) {
	token := base64.StdEncoding.EncodeToString([]byte("yesterday|2026-03-14T09:26:53Z"))
	_, _, err := DecodeToken(token)
	assert.Error(t, err)

	token = base64.StdEncoding.EncodeToString([]byte("2026-03-14T09:26:53Z|later"))
	_, _, err = DecodeToken(token)
	assert.Error(t, err)
}
