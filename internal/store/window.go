package store

import "time"

// Clock returns the current time. Tests inject a fixed clock.
type Clock func() time.Time

// TradingWindow is the local-time hour range in which rebased positions may
// be written back: StartHour < hour <= EndHour.
type TradingWindow struct {
	StartHour int
	EndHour   int
}

// DefaultTradingWindow allows writes after 08:00 and through the 22:00 hour.
var DefaultTradingWindow = TradingWindow{StartHour: 8, EndHour: 22}

// Contains reports whether t's wall-clock hour falls inside the window.
func (w TradingWindow) Contains(t time.Time) bool {
	h := t.Hour()
	return h > w.StartHour && h <= w.EndHour
}
