package otpcode

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateLengthAndCharset(t *testing.T) {
	for _, length := range []int{4, 6, 8, 10} {
		code, err := Generate(length)
		require.NoError(t, err)
		require.Len(t, code, length)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9', "unexpected rune %q in %q", r, code)
		}
	}
}

func TestGenerateDefaultsLength(t *testing.T) {
	code, err := Generate(0)
	require.NoError(t, err)
	assert.Len(t, code, DefaultLength)
}

func TestGenerateNotConstant(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := Generate(6)
		require.NoError(t, err)
		seen[code] = true
	}
	// 50 draws from a million values colliding down to a handful would
	// mean a broken source.
	assert.Greater(t, len(seen), 40)
}

func TestHashDeterministicPerSecret(t *testing.T) {
	h1 := Hash("123456", "secret-a")
	h2 := Hash("123456", "secret-a")
	h3 := Hash("123456", "secret-b")

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64) // hex sha256
}

func TestSecureEquals(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"identical", "123456", "123456", true},
		{"empty", "", "", true},
		{"different length", "12345", "123456", false},
		{"first byte differs", "023456", "123456", false},
		{"last byte differs", "123450", "123456", false},
		{"all differ", "000000", "123456", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SecureEquals(tt.a, tt.b))
		})
	}
}

// Timing should not vary detectably with the mismatch position. The
// assertion is statistical and deliberately loose; it only catches a
// comparison that short-circuits on the first differing byte.
func TestSecureEqualsTimingIndependentOfMismatchPosition(t *testing.T) {
	if testing.Short() {
		t.Skip("timing measurement skipped in short mode")
	}

	const iterations = 200000
	base := strings.Repeat("7", 64)
	early := "0" + strings.Repeat("7", 63)
	late := strings.Repeat("7", 63) + "0"

	measure := func(other string) time.Duration {
		start := time.Now()
		for i := 0; i < iterations; i++ {
			SecureEquals(base, other)
		}
		return time.Since(start)
	}

	// Warm up, then interleave to even out scheduler noise.
	measure(early)
	measure(late)
	earlyTime := measure(early) + measure(early)
	lateTime := measure(late) + measure(late)

	ratio := float64(earlyTime) / float64(lateTime)
	assert.InDelta(t, 1.0, ratio, 0.5, "early=%s late=%s", earlyTime, lateTime)
}
