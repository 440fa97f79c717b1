package tz

import (
	"sync/atomic"
	"time"
)

var current atomic.Pointer[time.Location]

func init() {
	current.Store(time.UTC)
}

// Load resolves an IANA zone name and makes it the default for Format.
func Load(name string) (*time.Location, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, err
	}
	current.Store(loc)
	return loc, nil
}

// Location returns the configured operator timezone.
func Location() *time.Location {
	return current.Load()
}

// Format renders t in the operator timezone; the zero time renders empty.
func Format(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(Location()).Format("02.01.2006 15:04")
}
