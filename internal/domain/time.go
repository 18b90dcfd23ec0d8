package domain

import "time"

// Millis converts t to the unix millisecond timestamps stored in documents.
func Millis(t time.Time) int64 {
	return t.UnixNano() / int64(time.Millisecond)
}

// FromMillis is the inverse of Millis.
func FromMillis(ms int64) time.Time {
	return time.Unix(0, ms*int64(time.Millisecond))
}
