package profile

import (
	"strings"
	"time"
)

// Layouts are tried most-specific first; the sets mirror the formats the
// ingestion side has actually seen in the wild.
var dateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"02/01/2006",
	"01/02/2006",
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05.000Z07:00",
	"02.01.2006 15:04:05",
}

func parsesAsTemporal(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, lay := range dateLayouts {
		if _, err := time.Parse(lay, s); err == nil {
			return true
		}
	}
	for _, lay := range timestampLayouts {
		if _, err := time.Parse(lay, s); err == nil {
			return true
		}
	}
	return false
}
