package calculator

import "sort"

// NearestLevels returns the highest level <= price as support and the lowest level
// strictly above price as resistance. A missing side is nil. A level equal to the
// price is always support.
func NearestLevels(levels []float64, price float64) (support, resistance *float64) {
	if len(levels) == 0 {
		return nil, nil
	}
	if !sort.Float64sAreSorted(levels) {
		return scanLevels(levels, price)
	}
	// first index with level > price
	idx := sort.Search(len(levels), func(i int) bool { return levels[i] > price })
	if idx > 0 {
		s := levels[idx-1]
		support = &s
	}
	if idx < len(levels) {
		r := levels[idx]
		resistance = &r
	}
	return support, resistance
}

func scanLevels(levels []float64, price float64) (support, resistance *float64) {
	for _, lvl := range levels {
		l := lvl
		if l <= price {
			if support == nil || l > *support {
				support = &l
			}
		} else if resistance == nil || l < *resistance {
			resistance = &l
		}
	}
	return support, resistance
}
