package publish

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gasguard/gasmon/pkg/config"
)

func TestNewInflux_MissingURL(t *testing.T) {
	_, err := NewInflux(config.InfluxConfig{}, "token")
	assert.Error(t, err)
}

func TestNewInflux_MissingToken(t *testing.T) {
	_, err := NewInflux(config.InfluxConfig{URL: "http://localhost:8086"}, "")
	assert.Error(t, err)
}

func TestNewInflux_Close(t *testing.T) {
	p, err := NewInflux(config.InfluxConfig{
		URL:    "http://localhost:8086",
		Org:    "home",
		Bucket: "gas",
		Device: "gasmon",
	}, "token")
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}
