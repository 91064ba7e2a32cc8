package floats

import "math"

// SoftmaxInPlace converts logits to probabilities in place.
// Uses max-subtraction for numerical stability; the result sums to 1.
func SoftmaxInPlace(v []float32) {
	if len(v) == 0 {
		return
	}

	maxVal := v[0]
	for _, x := range v[1:] {
		if x > maxVal {
			maxVal = x
		}
	}

	var sum float32
	for i, x := range v {
		e := float32(math.Exp(float64(x - maxVal)))
		v[i] = e
		sum += e
	}

	ScaleInPlace(v, 1/sum)
}

// SoftmaxRows applies a per-row softmax to a batch of logits,
// returning a new matrix. Rows sum to 1.
func SoftmaxRows(logits [][]float32) [][]float32 {
	out := make([][]float32, len(logits))
	for i, row := range logits {
		out[i] = make([]float32, len(row))
		copy(out[i], row)
		SoftmaxInPlace(out[i])
	}
	return out
}

// SharpenColumns squares every entry of a batch of per-row probabilities
// and renormalizes each COLUMN to sum to 1 across the batch, in place.
//
// This is the batch-relative sharpening used for pseudo-label memory:
// p[i][j] = p[i][j]^2 / sum_i p[i][j]^2. It is intentionally not a
// per-row softmax; after the call every column sums to 1, rows do not.
// Columns whose squared sum is zero are left untouched.
func SharpenColumns(probs [][]float32) {
	if len(probs) == 0 {
		return
	}

	cols := len(probs[0])
	colSums := make([]float32, cols)

	for _, row := range probs {
		for j, p := range row {
			row[j] = p * p
			colSums[j] += row[j]
		}
	}

	for _, row := range probs {
		for j := range row {
			if colSums[j] > 0 {
				row[j] /= colSums[j]
			}
		}
	}
}
