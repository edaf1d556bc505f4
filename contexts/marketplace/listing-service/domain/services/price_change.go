package services

import (
	"math"
	"strconv"
)

type PriceDirection string

const (
	PriceUnchanged PriceDirection = "unchanged"
	PriceDropped   PriceDirection = "dropped"
	PriceIncreased PriceDirection = "increased"
)

type PriceChange struct {
	OldPrice    float64
	NewPrice    float64
	Direction   PriceDirection
	DropAmount  float64
	DropPercent string
}

// ComputePriceChange derives the drop amount and the drop percentage rounded
// to one decimal place ("10.0").
func ComputePriceChange(oldPrice float64, newPrice float64) PriceChange {
	change := PriceChange{OldPrice: oldPrice, NewPrice: newPrice, Direction: PriceUnchanged}
	switch {
	case newPrice < oldPrice:
		change.Direction = PriceDropped
		change.DropAmount = oldPrice - newPrice
		percent := 0.0
		if oldPrice > 0 {
			percent = change.DropAmount / oldPrice * 100
		}
		change.DropPercent = strconv.FormatFloat(math.Round(percent*10)/10, 'f', 1, 64)
	case newPrice > oldPrice:
		change.Direction = PriceIncreased
	}
	return change
}
