// Package geo obtains the current position from whichever runtime the
// process was started under: a linked device, the user's browser, or a fixed
// point from configuration.
package geo

import (
	"context"
	"math"
	"math/big"
	"strconv"
	"strings"
)

const (
	RuntimeDevice  = "device"
	RuntimeBrowser = "browser"
	RuntimeStatic  = "static"
)

type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (p Position) Valid() bool {
	return p.Latitude >= -90 && p.Latitude <= 90 && p.Longitude >= -180 && p.Longitude <= 180
}

func (p Position) String() string {
	return FormatDegrees(p.Latitude) + ", " + FormatDegrees(p.Longitude)
}

var thousand = big.NewRat(1000, 1)

// FormatDegrees renders v with two decimals. A value exactly halfway between
// two hundredths rounds away from zero; everything else rounds to nearest.
func FormatDegrees(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
	sign := ""
	if v < 0 {
		sign = "-"
	}
	abs := math.Abs(v)

	milli := new(big.Rat).Mul(new(big.Rat).SetFloat64(abs), thousand)
	if !milli.IsInt() {
		return sign + strconv.FormatFloat(abs, 'f', 2, 64)
	}
	n := milli.Num()
	if new(big.Int).Mod(n, big.NewInt(10)).Int64() != 5 {
		return sign + strconv.FormatFloat(abs, 'f', 2, 64)
	}

	hundredths := new(big.Int).Add(n, big.NewInt(5))
	hundredths.Quo(hundredths, big.NewInt(10))
	digits := hundredths.String()
	if len(digits) < 3 {
		digits = strings.Repeat("0", 3-len(digits)) + digits
	}
	return sign + digits[:len(digits)-2] + "." + digits[len(digits)-2:]
}

// Locator resolves the current position once per call. Implementations do
// not retry.
type Locator interface {
	CurrentPosition(ctx context.Context) (Position, error)
	Runtime() string
}

type StaticLocator struct {
	pos Position
}

func NewStaticLocator(lat, lon float64) *StaticLocator {
	return &StaticLocator{pos: Position{Latitude: lat, Longitude: lon}}
}

func (s *StaticLocator) CurrentPosition(ctx context.Context) (Position, error) {
	return s.pos, nil
}

func (s *StaticLocator) Runtime() string { return RuntimeStatic }
