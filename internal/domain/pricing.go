package domain

import "math"

// GSTRate is the flat goods and services tax applied per order line.
const GSTRate = 0.18

func round2(v float64) float64 { return math.Round(v*100) / 100 }

// LineFor prices a cart item. GST and total are rounded to paise per line.
func LineFor(it CartItem) OrderLine {
	sub := it.Price * float64(it.Quantity)
	return OrderLine{
		ProductID: it.ID,
		Name:      it.Name,
		Type:      it.Type,
		Quantity:  it.Quantity,
		Price:     it.Price,
		GST:       round2(sub * GSTRate),
		Total:     round2(sub * (1 + GSTRate)),
		Image:     it.Image(),
	}
}

func LinesFor(items []CartItem) []OrderLine {
	out := make([]OrderLine, 0, len(items))
	for _, it := range items {
		out = append(out, LineFor(it))
	}
	return out
}

// OrderTotal sums already-rounded line totals.
func OrderTotal(lines []OrderLine) float64 {
	total := 0.0
	for _, l := range lines {
		total += l.Total
	}
	return round2(total)
}

func CartSubtotal(items []CartItem) float64 {
	total := 0.0
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
	}
	return round2(total)
}

// MinorUnits converts an amount to the smallest currency unit (paise, cents).
func MinorUnits(amount float64) int64 { return int64(math.Round(amount * 100)) }
