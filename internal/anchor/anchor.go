// Package anchor turns repeated venue samples into a single anchor price,
// checks it against an independent venue and derives cross ratios.
package anchor

import (
	"errors"
)

// ErrNoPrice is returned when no usable trade or quote price exists.
var ErrNoPrice = errors.New("no price data")

// Method names the branch that produced an anchor value.
type Method string

const (
	MethodLastTrade Method = "last_trade"
	MethodMidBidAsk Method = "mid_bid_ask"
)

// Level is a cross-venue discrepancy tier.
type Level string

const (
	LevelNone        Level = "none"
	LevelMinor       Level = "minor"
	LevelMaterial    Level = "material"
	LevelUnavailable Level = "unavailable"
)

// AnchorResult is the resolved anchor for one request. Value is always finite.
type AnchorResult struct {
	Value      float64
	Method     Method
	AgeSeconds *int64
	Timestamps []*string
}

// CrossCheckResult compares the anchor with the second venue. DiffPct is set
// whenever Level is not LevelUnavailable.
type CrossCheckResult struct {
	Price           *float64
	ServerTimestamp *string
	DiffPct         *float64
	Level           Level
}

// RatioResult holds numerator/denominator, nil when either leg is unusable.
type RatioResult struct {
	Value *float64
}
