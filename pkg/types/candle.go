package types

import (
	"fmt"
	"time"
)

type Direction int

const DirectionUp = 1
const DirectionNone = 0
const DirectionDown = -1

// Candle is the OHLCV aggregate of the trades in one timeframe bucket, plus the trade count.
type Candle struct {
	// Timestamp is the opening edge of the bucket in milliseconds
	Timestamp int64 `json:"timestamp" db:"timestamp"`

	Open   float64 `json:"open" db:"open"`
	High   float64 `json:"high" db:"high"`
	Low    float64 `json:"low" db:"low"`
	Close  float64 `json:"close" db:"close"`
	Volume float64 `json:"volume" db:"volume"`
	Count  int64   `json:"count" db:"count"`
}

// NewCandle opens a candle at timestamp seeded with the given trade.
func NewCandle(timestamp int64, trade Trade) Candle {
	return Candle{
		Timestamp: timestamp,
		Open:      trade.Price,
		High:      trade.Price,
		Low:       trade.Price,
		Close:     trade.Price,
		Volume:    trade.Amount,
		Count:     1,
	}
}

// Update folds a trade into the candle.
func (c *Candle) Update(trade Trade) {
	if trade.Price > c.High {
		c.High = trade.Price
	}

	if trade.Price < c.Low {
		c.Low = trade.Price
	}

	c.Close = trade.Price
	c.Volume += trade.Amount
	c.Count++
}

func (c Candle) StartTime() time.Time {
	return time.UnixMilli(c.Timestamp)
}

func (c Candle) Direction() Direction {
	if c.Close > c.Open {
		return DirectionUp
	} else if c.Close < c.Open {
		return DirectionDown
	}
	return DirectionNone
}

func (c Candle) GetChange() float64 {
	return c.Close - c.Open
}

func (c Candle) GetMaxChange() float64 {
	return c.High - c.Low
}

// Tuple returns the candle as [timestamp, open, high, low, close, volume, count].
func (c Candle) Tuple() []interface{} {
	return []interface{}{c.Timestamp, c.Open, c.High, c.Low, c.Close, c.Volume, c.Count}
}

func (c Candle) String() string {
	return fmt.Sprintf("%s O: %v H: %v L: %v C: %v V: %v N: %d",
		c.StartTime().UTC().Format(time.DateTime), c.Open, c.High, c.Low, c.Close, c.Volume, c.Count)
}
