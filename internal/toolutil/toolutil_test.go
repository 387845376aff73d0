package toolutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormLangs(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{" , ", nil},
		{"zh", []string{"zh"}},
		{"zh-Hans, en ,,ja", []string{"zh-Hans", "en", "ja"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormLangs(tt.in), tt.in)
	}
}

func TestRequireURL(t *testing.T) {
	u, err := RequireURL("  https://youtu.be/x ")
	require.NoError(t, err)
	assert.Equal(t, "https://youtu.be/x", u)

	_, err = RequireURL("   ")
	assert.ErrorIs(t, err, ErrURLRequired)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 50, ClampLimit(0, 50, 500))
	assert.Equal(t, 50, ClampLimit(-3, 50, 500))
	assert.Equal(t, 7, ClampLimit(7, 50, 500))
	assert.Equal(t, 500, ClampLimit(9000, 50, 500))
}
