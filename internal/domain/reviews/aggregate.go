package reviews

import "math"

// Aggregate is the denormalized rating stored on a listing.
type Aggregate struct {
	Rating float64
	Count  int
}

// ComputeAggregate averages the public reviews, rounded to one decimal.
func ComputeAggregate(items []*Review) Aggregate {
	var total, count int
	for _, r := range items {
		if r == nil || !r.Public {
			continue
		}
		total += r.Rating
		count++
	}
	if count == 0 {
		return Aggregate{}
	}
	mean := float64(total) / float64(count)
	return Aggregate{Rating: math.Round(mean*10) / 10, Count: count}
}
