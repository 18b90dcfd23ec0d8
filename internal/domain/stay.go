package domain

import "time"

const Day = 24 * time.Hour

// Stay is a guest lodging record. Nights is derived from CheckIn and
// CheckOut and is never taken from user input.
type Stay struct {
	ID        string `json:"id,omitempty"`
	GuestName string `json:"guestName"`
	Rooms     int64  `json:"rooms"`
	CheckIn   int64  `json:"checkIn"`  // unix millis
	CheckOut  int64  `json:"checkOut"` // unix millis
	PriceCOP  int64  `json:"priceCOP"`
	Nights    int64  `json:"nights"`
	At        int64  `json:"at"` // unix millis
	CreatedBy string `json:"createdBy"`
}

// Nights returns the number of started days between checkIn and checkOut.
func Nights(checkIn, checkOut time.Time) int64 {
	d := checkOut.Sub(checkIn)
	if d <= 0 {
		return 0
	}
	n := int64(d / Day)
	if d%Day != 0 {
		n++
	}
	return n
}

func (s Stay) Document() map[string]interface{} {
	return map[string]interface{}{
		"guestName": s.GuestName,
		"rooms":     s.Rooms,
		"checkIn":   s.CheckIn,
		"checkOut":  s.CheckOut,
		"priceCOP":  s.PriceCOP,
		"nights":    s.Nights,
		"at":        s.At,
		"createdBy": s.CreatedBy,
	}
}
