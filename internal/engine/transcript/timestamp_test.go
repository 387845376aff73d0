package transcript

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    float64
		wantErr bool
	}{
		{"plain seconds", "75", 75, false},
		{"mm:ss", "01:02", 62, false},
		{"hh:mm:ss", "01:02:03", 3723, false},
		{"long minutes", "125:30", 7530, false},
		{"surrounding space", "  00:10 ", 10, false},
		{"embedded clock", "around 00:01:30 the host says", 90, false},
		{"decimal seconds", "75.9", 75, false},
		{"clock fraction dropped", "01:02.5", 62, false},
		{"garbage", "garbage", 0, true},
		{"empty", "", 0, true},
		{"negative", "-5", 0, true},
		{"minutes overflow int", "99999999999999999999:00", 0, true},
		{"hours overflow int", "99999999999999999999:00:00", 0, true},
		{"seconds overflow float", strings.Repeat("9", 400), 0, true},
		{"decimal overflow float", strings.Repeat("9", 400) + ".5", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTimestamp)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestParseLenient(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"garbage", 0},
		{"", 0},
		{"01:02.5", 62.5},
		{"00:00:07", 7},
		{"at 1:05", 65},
		{"42", 42},
		{strings.Repeat("9", 400), 0},
		{"99999999999999999999:00", 0},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.InDelta(t, tt.want, ParseLenient(tt.raw), 1e-9)
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "00:00:00"},
		{59.4, "00:00:59"},
		{59.5, "00:01:00"},
		{3723, "01:02:03"},
		{-12, "00:00:00"},
		{math.NaN(), "00:00:00"},
		{360000, "100:00:00"},
		{math.Inf(1), "00:00:00"},
		{math.Inf(-1), "00:00:00"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.in))
		})
	}
}

func TestFormatCapsHugeValues(t *testing.T) {
	for _, in := range []float64{1e19, math.MaxFloat64} {
		got := Format(in)
		assert.Regexp(t, `^\d{2,}:\d{2}:\d{2}$`, got)
		assert.Equal(t, Format(maxFormatSeconds), got)
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	for _, raw := range []string{"0", "59", "60", "3599", "3600", "86399", "00:00", "12:34", "01:02:03", "99:59:59"} {
		first, err := Parse(raw)
		require.NoError(t, err)
		second, err := Parse(Format(first))
		require.NoError(t, err)
		assert.Equal(t, first, second, raw)
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "00:01:05", Normalize("1:05"))
	assert.Equal(t, "00:00:00", Normalize("soon"))
	assert.Equal(t, "00:02:00", Normalize("120"))
	assert.Equal(t, "00:00:00", Normalize(strings.Repeat("9", 400)))
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name              string
		seconds, duration float64
		want              float64
	}{
		{"unknown duration", 30, 0, 30},
		{"negative", -4, 100, 0},
		{"inside", 30, 100, 30},
		{"at end", 100, 100, 99},
		{"past end", 500, 100, 99},
		{"tiny video", 3, 0.5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Clamp(tt.seconds, tt.duration), 1e-9)
		})
	}
}
