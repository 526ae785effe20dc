package geoip

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNilLocatorReturnsUnknown(t *testing.T) {
	var l *Locator
	assert.Equal(t, UnknownCountry, l.Country("203.0.113.7:1234"))
}

func TestOpenMissingDatabase(t *testing.T) {
	_, err := Open("/does/not/exist.mmdb")
	assert.Error(t, err)
}

func TestCountryBadAddress(t *testing.T) {
	l := &Locator{}
	assert.Equal(t, UnknownCountry, l.Country("not-an-address"))
	assert.Equal(t, UnknownCountry, l.Country(""))
}
