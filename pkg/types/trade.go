package types

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ErrMalformedTrade is returned by the trade decoders when a record is missing
// a field or carries a non-numeric timestamp, price or amount.
var ErrMalformedTrade = errors.New("malformed trade")

type SideType string

const (
	SideTypeBuy  = SideType("buy")
	SideTypeSell = SideType("sell")
	SideTypeNone = SideType("")
)

func ParseSideType(s string) SideType {
	switch strings.ToLower(s) {
	case "buy", "b", "bid":
		return SideTypeBuy
	case "sell", "s", "ask":
		return SideTypeSell
	}
	return SideTypeNone
}

// Trade is one executed market trade in the unified shape.
// Only Timestamp, Price and Amount take part in the candle aggregation.
type Trade struct {
	ID     string   `json:"id,omitempty"`
	Symbol string   `json:"symbol,omitempty"`
	Side   SideType `json:"side,omitempty"`

	// Timestamp is in milliseconds since epoch
	Timestamp int64   `json:"timestamp"`
	Price     float64 `json:"price"`
	Amount    float64 `json:"amount"`
}

func (t Trade) Time() time.Time {
	return time.UnixMilli(t.Timestamp)
}

func (t Trade) Validate() error {
	if math.IsNaN(t.Price) || math.IsInf(t.Price, 0) || t.Price <= 0 {
		return fmt.Errorf("%w: price %v must be a positive number", ErrMalformedTrade, t.Price)
	}

	if math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0) || t.Amount <= 0 {
		return fmt.Errorf("%w: amount %v must be a positive number", ErrMalformedTrade, t.Amount)
	}

	return nil
}

func (t Trade) String() string {
	return fmt.Sprintf("trade %s %s %s price=%v amount=%v at %s",
		t.ID, t.Symbol, t.Side, t.Price, t.Amount, t.Time().UTC().Format(time.RFC3339Nano))
}

