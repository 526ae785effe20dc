package geoip

import (
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"
)

// UnknownCountry is returned whenever a lookup cannot be completed.
const UnknownCountry = "Unknown"

// Locator resolves source addresses to ISO country codes using a MaxMind
// GeoIP2 database. A nil Locator is valid and always returns Unknown, so
// the service runs fine without a database on disk.
type Locator struct {
	reader *geoip2.Reader
}

// Open loads a GeoIP2 database from disk
func Open(path string) (*Locator, error) {
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open geoip database: %w", err)
	}
	return &Locator{reader: reader}, nil
}

// Country resolves addr ("host:port" or bare IP) to a country code.
// Any failure maps to Unknown.
func (l *Locator) Country(addr string) string {
	if l == nil || l.reader == nil {
		return UnknownCountry
	}

	host := addr
	if h, _, err := net.SplitHostPort(addr); err == nil {
		host = h
	}

	ip := net.ParseIP(host)
	if ip == nil {
		return UnknownCountry
	}

	record, err := l.reader.Country(ip)
	if err != nil || record.Country.IsoCode == "" {
		return UnknownCountry
	}
	return record.Country.IsoCode
}

// Close releases the underlying database
func (l *Locator) Close() error {
	if l == nil || l.reader == nil {
		return nil
	}
	return l.reader.Close()
}
