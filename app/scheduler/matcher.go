package scheduler

import (
	"github.com/benchmetrics/compscore/models"
)

// MatchBenchmarks returns the benchmark rows applicable to a campaign. A
// benchmark matches when its platform equals the provider's platform name
// (case-insensitive) and its industry string contains any of the company's
// industry levels as a case-insensitive substring. A company with no industry
// classification matches nothing.
func MatchBenchmarks(campaign *models.Campaign, company *models.Company, benchmarks []*models.Benchmark) []*models.Benchmark {
	if company == nil || !company.HasIndustry() {
		return nil
	}

	levels := company.IndustryLevels()
	platform := campaign.Provider.PlatformName()

	var matched []*models.Benchmark
	for _, b := range benchmarks {
		if b == nil {
			continue
		}
		if !b.MatchesPlatform(platform) {
			continue
		}
		if !b.MatchesIndustry(levels) {
			continue
		}
		matched = append(matched, b)
	}
	return matched
}
