package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	// ErrUnsupportedTimeframe is returned when the unit of a timeframe is not one of y, M, w, d, h, m, s.
	ErrUnsupportedTimeframe = errors.New("timeframe unit is not supported")

	// ErrInvalidTimeframe is returned when the magnitude of a timeframe is not a positive number.
	ErrInvalidTimeframe = errors.New("invalid timeframe")
)

// timeframeUnits maps the trailing unit character to seconds.
// Note the case: "m" is minutes and "M" is months.
var timeframeUnits = map[byte]int64{
	'y': 365 * 24 * 60 * 60,
	'M': 30 * 24 * 60 * 60,
	'w': 7 * 24 * 60 * 60,
	'd': 24 * 60 * 60,
	'h': 60 * 60,
	'm': 60,
	's': 1,
}

// maxTimeframeSeconds keeps the bucket size in milliseconds within int64
const maxTimeframeSeconds = float64(math.MaxInt64 / 1000)

// ParseTimeframe converts a timeframe token like "15m", "4h" or "1M" into seconds.
func ParseTimeframe(timeframe string) (int64, error) {
	if len(timeframe) < 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeframe, timeframe)
	}

	unit := timeframe[len(timeframe)-1]
	scale, ok := timeframeUnits[unit]
	if !ok {
		return 0, fmt.Errorf("%w: timeframe unit %q is not supported", ErrUnsupportedTimeframe, string(unit))
	}

	amount, err := strconv.ParseFloat(timeframe[:len(timeframe)-1], 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, fmt.Errorf("%w: %q has a non-numeric magnitude", ErrInvalidTimeframe, timeframe)
	}

	seconds := amount * float64(scale)
	if seconds < 1 {
		return 0, fmt.Errorf("%w: %q is shorter than one second", ErrInvalidTimeframe, timeframe)
	}

	if seconds >= maxTimeframeSeconds {
		return 0, fmt.Errorf("%w: %q is too long", ErrInvalidTimeframe, timeframe)
	}

	if seconds != math.Trunc(seconds) {
		return 0, fmt.Errorf("%w: %q is not a whole number of seconds", ErrInvalidTimeframe, timeframe)
	}

	return int64(seconds), nil
}

type RoundDirection int

const (
	RoundDown RoundDirection = iota
	RoundUp
)

func (d RoundDirection) String() string {
	if d == RoundUp {
		return "up"
	}
	return "down"
}

// ParseRoundDirection accepts "up" or "down"; an empty string means down.
func ParseRoundDirection(s string) (RoundDirection, error) {
	switch s {
	case "", "down":
		return RoundDown, nil
	case "up":
		return RoundUp, nil
	}
	return RoundDown, fmt.Errorf("unknown round direction %q, expecting up or down", s)
}

// RoundTimeframe snaps timestampMs down to the timeframe boundary. RoundUp always
// advances one full bucket past that boundary, even when the timestamp is already aligned.
func RoundTimeframe(timeframe string, timestampMs int64, direction RoundDirection) (int64, error) {
	seconds, err := ParseTimeframe(timeframe)
	if err != nil {
		return 0, err
	}

	bucketMs := seconds * 1000
	floor := FloorTimestamp(timestampMs, bucketMs)
	if direction == RoundUp {
		return floor + bucketMs, nil
	}
	return floor, nil
}

// FloorTimestamp returns the left edge of the bucket containing timestampMs.
// The remainder is kept non-negative so timestamps before the epoch floor correctly.
func FloorTimestamp(timestampMs, bucketMs int64) int64 {
	offset := timestampMs % bucketMs
	if offset < 0 {
		offset += bucketMs
	}
	return timestampMs - offset
}

// Timeframe is a validated-on-decode timeframe token such as "1m" or "4h".
type Timeframe string

const (
	Timeframe1s  = Timeframe("1s")
	Timeframe1m  = Timeframe("1m")
	Timeframe5m  = Timeframe("5m")
	Timeframe15m = Timeframe("15m")
	Timeframe30m = Timeframe("30m")
	Timeframe1h  = Timeframe("1h")
	Timeframe4h  = Timeframe("4h")
	Timeframe1d  = Timeframe("1d")
	Timeframe1w  = Timeframe("1w")
	Timeframe1M  = Timeframe("1M")
	Timeframe1y  = Timeframe("1y")
)

func (t Timeframe) String() string {
	return string(t)
}

func (t Timeframe) Validate() error {
	_, err := ParseTimeframe(string(t))
	return err
}

// Seconds returns 0 for an invalid timeframe, call Validate first if that matters.
func (t Timeframe) Seconds() int64 {
	seconds, _ := ParseTimeframe(string(t))
	return seconds
}

func (t Timeframe) Milliseconds() int64 {
	return t.Seconds() * 1000
}

func (t Timeframe) Duration() time.Duration {
	return time.Duration(t.Seconds()) * time.Second
}

// Truncate returns the bucket start of tt.
func (t Timeframe) Truncate(tt time.Time) time.Time {
	ms := t.Milliseconds()
	if ms == 0 {
		return tt
	}
	return time.UnixMilli(FloorTimestamp(tt.UnixMilli(), ms)).In(tt.Location())
}

func (t *Timeframe) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	if err := Timeframe(s).Validate(); err != nil {
		return err
	}

	*t = Timeframe(s)
	return nil
}

func (t *Timeframe) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	if err := Timeframe(s).Validate(); err != nil {
		return err
	}

	*t = Timeframe(s)
	return nil
}

type TimeframeSlice []Timeframe

func (s TimeframeSlice) StringSlice() (slice []string) {
	for _, tf := range s {
		slice = append(slice, tf.String())
	}
	return slice
}
