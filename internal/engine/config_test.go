package engine

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfigWithDefaults(t *testing.T) {
	c := Config{}.WithDefaults()
	assert.NotNil(t, c.HTTPClient)
	assert.Equal(t, 20*time.Second, c.TrackTimeout)
	assert.Equal(t, 24*time.Hour, c.CacheTTL)

	hc := &http.Client{}
	c = Config{HTTPClient: hc, TrackTimeout: time.Second, CacheTTL: time.Minute}.WithDefaults()
	assert.Same(t, hc, c.HTTPClient)
	assert.Equal(t, time.Second, c.TrackTimeout)
	assert.Equal(t, time.Minute, c.CacheTTL)
}
