package model

import "time"

// SignalType is the action a signal recommends.
type SignalType string

const (
	SignalBuy  SignalType = "BUY"
	SignalSell SignalType = "SELL"
	SignalHold SignalType = "HOLD"
)

// Signal is a discrete trading event detected at a bar.
type Signal struct {
	Time        time.Time
	Type        SignalType
	Price       float64
	Description string
}
