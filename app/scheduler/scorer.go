package scheduler

import (
	"errors"
	"fmt"

	"github.com/benchmetrics/compscore/models"
	"github.com/benchmetrics/compscore/utils"
)

// ErrUnknownKPIPolarity indicates a KPI with no entry in the polarity table.
// The caller must fail that one comparison and continue the sync.
var ErrUnknownKPIPolarity = errors.New("unknown KPI polarity")

// kpiLowerIsBetter is the fixed polarity table. Polarity is never inferred
// from data.
var kpiLowerIsBetter = map[models.KPIType]bool{
	models.KPICPA:  true,
	models.KPICPC:  true,
	models.KPICPM:  true,
	models.KPIROAS: false,
	models.KPICTR:  false,
	models.KPICVR:  false,
}

// ScoreResult is the outcome of comparing one campaign KPI against one
// benchmark row.
type ScoreResult struct {
	KPI              models.KPIType
	UserValue        float64
	PercentileBucket int
	PerformanceScore int
}

// ScoreCampaign compares the campaign's value for the benchmark's KPI against
// the benchmark percentiles. Returns nil when the campaign has no meaningful
// value for that KPI; callers skip instead of recording a zero.
func ScoreCampaign(campaign *models.Campaign, benchmark *models.Benchmark) (*ScoreResult, error) {
	lowerIsBetter, ok := kpiLowerIsBetter[benchmark.KPI]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKPIPolarity, benchmark.KPI)
	}

	value, meaningful := campaign.KPIValue(benchmark.KPI)
	if !meaningful {
		return nil, nil
	}

	var bucket, score int
	if lowerIsBetter {
		bucket = lowerBucket(value, benchmark)
		score = lowerScore(value, benchmark)
	} else {
		bucket = higherBucket(value, benchmark)
		score = higherScore(value, benchmark)
	}

	return &ScoreResult{
		KPI:              benchmark.KPI,
		UserValue:        value,
		PercentileBucket: bucket,
		PerformanceScore: clampScore(score),
	}, nil
}

// Percentile buckets on the comparison scale. The read API maps these to the
// coarse display scale via BenchmarkComparison.DisplayBucket.
func lowerBucket(value float64, b *models.Benchmark) int {
	switch {
	case value <= b.Percentile25:
		return 90
	case value <= b.Median:
		return 75
	case value <= b.Percentile75:
		return 50
	default:
		return 25
	}
}

func higherBucket(value float64, b *models.Benchmark) int {
	switch {
	case value >= b.Percentile75:
		return 90
	case value >= b.Median:
		return 75
	case value >= b.Percentile25:
		return 50
	default:
		return 25
	}
}

func lowerScore(value float64, b *models.Benchmark) int {
	switch {
	case value <= b.Percentile25:
		return 90
	case value <= b.Median:
		return 70
	case value <= b.Percentile75:
		return 50
	default:
		return 30
	}
}

func higherScore(value float64, b *models.Benchmark) int {
	switch {
	case value >= b.Percentile75:
		return 90
	case value >= b.Median:
		return 70
	case value >= b.Percentile25:
		return 50
	default:
		return 30
	}
}

func clampScore(score int) int {
	if score < utils.MinPerformanceScore {
		return utils.MinPerformanceScore
	}
	if score > utils.MaxPerformanceScore {
		return utils.MaxPerformanceScore
	}
	return score
}
