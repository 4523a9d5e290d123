package validate

import (
	"context"
	"fmt"
	"math"

	"fddpipeline/pkg/model"
)

// minSampleSize is the smallest cross-document sample the outlier check
// trusts; below it, a "deviation" is just noise.
const minSampleSize = 5

// HistoricalStats supplies the cross-document distribution for a monetary
// field path (spec.md §4.4: "any monetary field deviating > 4 σ from the
// cross-document distribution"). Grounded on the teacher's
// pkg/core/validate.CheckForOutlier (threshold-based YoY deviation),
// generalized from a single prior-value comparison to a population mean/σ.
type HistoricalStats interface {
	Stats(ctx context.Context, fieldPath string) (mean, stddev float64, n int, err error)
}

// CheckOutlier4Sigma flags fieldPath's value as Info-severity if it
// deviates more than 4 standard deviations from the historical mean.
func CheckOutlier4Sigma(ctx context.Context, stats HistoricalStats, fieldPath string, value int64) (*model.ValidationError, error) {
	mean, stddev, n, err := stats.Stats(ctx, fieldPath)
	if err != nil {
		return nil, fmt.Errorf("validate: outlier stats for %s: %w", fieldPath, err)
	}
	if n < minSampleSize || stddev == 0 {
		return nil, nil
	}

	deviation := math.Abs(float64(value)-mean) / stddev
	if deviation <= 4 {
		return nil, nil
	}

	e := errorf(fieldPath, model.SeverityInfo, model.CategoryRange,
		fmt.Sprintf("%d", value), fmt.Sprintf("mean=%.0f stddev=%.0f", mean, stddev),
		fmt.Sprintf("value deviates %.1fσ from the cross-document distribution", deviation))
	return &e, nil
}

// SampleStats is an in-memory HistoricalStats, used by tests and as the
// seed implementation before a real cross-document query backs it.
type SampleStats struct {
	samples map[string][]float64
}

func NewSampleStats() *SampleStats {
	return &SampleStats{samples: make(map[string][]float64)}
}

func (s *SampleStats) Add(fieldPath string, value float64) {
	s.samples[fieldPath] = append(s.samples[fieldPath], value)
}

func (s *SampleStats) Stats(ctx context.Context, fieldPath string) (float64, float64, int, error) {
	vals := s.samples[fieldPath]
	n := len(vals)
	if n == 0 {
		return 0, 0, 0, nil
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	mean := sum / float64(n)

	var variance float64
	for _, v := range vals {
		d := v - mean
		variance += d * d
	}
	variance /= float64(n)

	return mean, math.Sqrt(variance), n, nil
}
