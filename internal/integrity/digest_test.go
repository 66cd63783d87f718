package integrity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDigestTime(t *testing.T) {
	t.Run("seconds into the day", func(t *testing.T) {
		at := time.Date(2026, 5, 1, 13, 5, 7, 0, time.UTC)
		assert.Equal(t, int64(13*3600+5*60+7), DigestTime(at))
	})

	t.Run("midnight digests to zero", func(t *testing.T) {
		at := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, int64(0), DigestTime(at))
	})

	t.Run("date does not contribute", func(t *testing.T) {
		first := time.Date(2020, 1, 1, 9, 30, 0, 0, time.UTC)
		second := time.Date(2026, 12, 31, 9, 30, 0, 0, time.UTC)
		assert.Equal(t, DigestTime(first), DigestTime(second))
	})

	t.Run("sub-second precision does not contribute", func(t *testing.T) {
		whole := time.Date(2026, 5, 1, 9, 30, 15, 0, time.UTC)
		fractional := whole.Add(999 * time.Millisecond)
		assert.Equal(t, DigestTime(whole), DigestTime(fractional))
	})
}

func TestDigestDialog(t *testing.T) {
	at := time.Date(2026, 5, 1, 1, 2, 3, 0, time.UTC)
	assert.Equal(t, int64(42)+DigestTime(at), DigestDialog(42, at))
}
