// Package metrics computes micro-averaged multi-label classification
// metrics over a fixed vocabulary. It is pure: no I/O, no retained state,
// identical inputs always produce identical output.
package metrics

import (
	"errors"
	"fmt"

	"github.com/food-calorie-app/audio-eval/internal/labels"
)

// ErrLengthMismatch is returned when the ground-truth and prediction
// sequences are not aligned.
var ErrLengthMismatch = errors.New("ground truth and prediction counts differ")

// ClassMetrics holds the per-vocabulary-entry breakdown.
type ClassMetrics struct {
	Label     string
	Precision float64
	Recall    float64
	F1        float64
	TP        int
	FP        int
	FN        int
}

// Result aggregates confusion counts over all samples x vocabulary cells
// plus the micro-averaged ratios derived from them.
type Result struct {
	Precision float64
	Recall    float64
	F1        float64
	Accuracy  float64
	TP        int
	FP        int
	FN        int
	TN        int
	PerClass  []ClassMetrics
}

// Compute scans the N x V binary matrix induced by the aligned label sets
// and the vocabulary, accumulating confusion counts globally and per class.
// Sample order does not matter: the accumulation is a commutative sum.
//
// Every ratio uses the same convention: a zero denominator is replaced by 1
// before dividing, so a class that never occurs and is never predicted
// scores exactly 0 rather than NaN.
func Compute(vocabulary []string, truth, predicted []labels.Set) (Result, error) {
	if len(truth) != len(predicted) {
		return Result{}, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(truth), len(predicted))
	}

	classTP := make([]int, len(vocabulary))
	classFP := make([]int, len(vocabulary))
	classFN := make([]int, len(vocabulary))

	res := Result{}

	for i := range truth {
		for v, label := range vocabulary {
			actual := truth[i].Has(label)
			pred := predicted[i].Has(label)

			switch {
			case pred && actual:
				res.TP++
				classTP[v]++
			case pred && !actual:
				res.FP++
				classFP[v]++
			case !pred && actual:
				res.FN++
				classFN[v]++
			default:
				res.TN++
			}
		}
	}

	res.Precision = safeRatio(res.TP, res.TP+res.FP)
	res.Recall = safeRatio(res.TP, res.TP+res.FN)
	res.F1 = f1Score(res.Precision, res.Recall)
	res.Accuracy = safeRatio(res.TP+res.TN, res.TP+res.FP+res.FN+res.TN)

	res.PerClass = make([]ClassMetrics, len(vocabulary))
	for v, label := range vocabulary {
		precision := safeRatio(classTP[v], classTP[v]+classFP[v])
		recall := safeRatio(classTP[v], classTP[v]+classFN[v])

		res.PerClass[v] = ClassMetrics{
			Label:     label,
			Precision: precision,
			Recall:    recall,
			F1:        f1Score(precision, recall),
			TP:        classTP[v],
			FP:        classFP[v],
			FN:        classFN[v],
		}
	}

	return res, nil
}

// safeRatio divides with the zero-denominator substitution: a denominator
// of 0 is treated as 1. Deliberate convention, kept from the reference
// scoring scripts.
func safeRatio(numerator, denominator int) float64 {
	if denominator == 0 {
		denominator = 1
	}

	return float64(numerator) / float64(denominator)
}

func f1Score(precision, recall float64) float64 {
	sum := precision + recall
	if sum == 0 {
		sum = 1
	}

	return 2 * precision * recall / sum
}
