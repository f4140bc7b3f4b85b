package synthesis

// weightCalculator maps a category plus aux signals to a normalized weight vector
type weightCalculator struct {
	baseWeights    map[ContextCategory]WeightVector
	boostSignals   map[Channel]string
	boostThreshold float64
	boostFactor    float64
}

func newWeightCalculator(t *Tuning) *weightCalculator {
	return &weightCalculator{
		baseWeights:    t.BaseWeights,
		boostSignals:   t.BoostSignals,
		boostThreshold: t.BoostThreshold,
		boostFactor:    t.BoostFactor,
	}
}

// computeWeights returns a fresh vector; the base table is never mutated
func (wc *weightCalculator) computeWeights(category ContextCategory, auxSignals map[string]float64) WeightVector {
	base, ok := wc.baseWeights[category]
	if !ok {
		base = wc.baseWeights[CategoryBalanced]
	}

	weights := make(WeightVector, len(AllChannels))
	for _, ch := range AllChannels {
		w := base[ch]
		if w < 0 {
			w = 0
		}
		if signal, ok := wc.boostSignals[ch]; ok {
			if v, present := auxSignals[signal]; present && v > wc.boostThreshold {
				w *= wc.boostFactor
			}
		}
		weights[ch] = w
	}

	return normalize(weights)
}

// normalize rescales w in place to sum to 1; an all-zero vector becomes uniform
func normalize(w WeightVector) WeightVector {
	total := 0.0
	for _, ch := range AllChannels {
		total += w[ch]
	}

	if total <= 0 {
		uniform := 1.0 / float64(len(AllChannels))
		for _, ch := range AllChannels {
			w[ch] = uniform
		}
		return w
	}

	for _, ch := range AllChannels {
		w[ch] /= total
	}
	return w
}
