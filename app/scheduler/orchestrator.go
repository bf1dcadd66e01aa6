package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/benchmetrics/compscore/app/services"
	"github.com/benchmetrics/compscore/models"
	"github.com/benchmetrics/compscore/repository"
	"github.com/benchmetrics/compscore/utils"
	"github.com/google/uuid"
)

// ErrNoSyncableAccount indicates no active OAuth account exists for the
// requested provider.
var ErrNoSyncableAccount = errors.New("no syncable oauth account")

// SyncRequest describes one sync attempt for one user/provider pair.
type SyncRequest struct {
	UserID     uint
	CompanyID  uint
	Provider   models.ProviderType
	JobType    models.SyncJobType
	DaysBack   int
	TargetDate *time.Time
}

// SyncOrchestrator runs the full pipeline for one sync attempt: token
// lifecycle, fetch, normalize, upsert, match, score. Exactly one SyncLog row
// is created per attempt and updated in place at the terminal transition.
type SyncOrchestrator struct {
	companyRepo    repository.CompanyRepository
	accountRepo    repository.OAuthAccountRepository
	campaignRepo   repository.CampaignRepository
	comparisonRepo repository.BenchmarkComparisonRepository
	syncLogRepo    repository.SyncLogRepository
	benchmarks     *BenchmarkCache
	refresher      services.TokenRefresher
	fetchers       map[models.ProviderType]services.PlatformFetcher
	db             *gorm.DB
	logger         *log.Logger
	fetchDelay     time.Duration
}

func NewSyncOrchestrator(
	companyRepo repository.CompanyRepository,
	accountRepo repository.OAuthAccountRepository,
	campaignRepo repository.CampaignRepository,
	comparisonRepo repository.BenchmarkComparisonRepository,
	syncLogRepo repository.SyncLogRepository,
	benchmarks *BenchmarkCache,
	refresher services.TokenRefresher,
	fetchers map[models.ProviderType]services.PlatformFetcher,
	db *gorm.DB,
	logger *log.Logger,
) *SyncOrchestrator {
	if logger == nil {
		logger = log.Default()
	}
	return &SyncOrchestrator{
		companyRepo:    companyRepo,
		accountRepo:    accountRepo,
		campaignRepo:   campaignRepo,
		comparisonRepo: comparisonRepo,
		syncLogRepo:    syncLogRepo,
		benchmarks:     benchmarks,
		refresher:      refresher,
		fetchers:       fetchers,
		db:             db,
		logger:         logger,
		fetchDelay:     utils.FetchRequestDelay,
	}
}

// RunSync executes one sync attempt and returns the terminal sync log row.
func (o *SyncOrchestrator) RunSync(ctx context.Context, req SyncRequest) (*models.SyncLog, error) {
	account, err := o.accountRepo.ActiveByUserAndProvider(ctx, req.UserID, req.Provider)
	if err != nil {
		return nil, err
	}
	if account == nil || !account.IsSyncable() {
		return nil, ErrNoSyncableAccount
	}

	syncLog := &models.SyncLog{
		UUID:      uuid.New(),
		UserID:    req.UserID,
		CompanyID: req.CompanyID,
		Provider:  req.Provider,
		JobType:   req.JobType,
		Status:    models.SyncStatusRunning,
		StartedAt: utils.UTCNow(),
	}
	if err := o.syncLogRepo.Save(ctx, syncLog); err != nil {
		return nil, err
	}

	recordsSynced, err := o.runPipeline(ctx, req, account)
	if err != nil {
		o.failSync(ctx, syncLog, account, err)
		syncRunsTotal.WithLabelValues(string(req.Provider), string(models.SyncStatusFailed)).Inc()
		return syncLog, err
	}

	now := utils.UTCNow()
	syncLog.Status = models.SyncStatusCompleted
	syncLog.RecordsSynced = recordsSynced
	syncLog.CompletedAt = &now
	if err := o.syncLogRepo.Update(ctx, syncLog); err != nil {
		return syncLog, err
	}
	if err := o.accountRepo.MarkSynced(ctx, account.ID, now); err != nil {
		o.logger.Printf("sync: mark synced failed for account id=%d: %v", account.ID, err)
	}

	syncRunsTotal.WithLabelValues(string(req.Provider), string(models.SyncStatusCompleted)).Inc()
	o.logger.Printf("sync: completed provider=%s company_id=%d records=%d", req.Provider, req.CompanyID, recordsSynced)
	return syncLog, nil
}

func (o *SyncOrchestrator) runPipeline(ctx context.Context, req SyncRequest, account *models.OAuthAccount) (int, error) {
	fetcher, ok := o.fetchers[req.Provider]
	if !ok {
		return 0, fmt.Errorf("no fetcher registered for provider %s", req.Provider)
	}

	accessToken, err := o.ensureFreshToken(ctx, account)
	if err != nil {
		return 0, err
	}

	window := o.resolveWindow(req)
	records, err := o.fetchWindow(ctx, fetcher, accessToken, account.AccountID, window)
	if err != nil {
		return 0, err
	}
	o.logger.Printf("sync: fetched %d campaign records provider=%s", len(records), req.Provider)

	campaigns := make([]*models.Campaign, 0, len(records))
	for _, rec := range records {
		c, err := NormalizeCampaign(rec, account, window)
		if err != nil {
			return 0, err
		}
		campaigns = append(campaigns, c)
	}

	if len(campaigns) > 0 {
		if err := repository.WithTransaction(ctx, o.db, func(txCtx context.Context) error {
			return o.campaignRepo.UpsertBatch(txCtx, campaigns)
		}); err != nil {
			return 0, err
		}
		campaignsSyncedTotal.WithLabelValues(string(req.Provider)).Add(float64(len(campaigns)))
	}

	if err := o.compareAgainstBenchmarks(ctx, req, account); err != nil {
		return 0, err
	}

	return len(campaigns), nil
}

// ensureFreshToken refreshes the access token only when it has expired.
// Tokens with remaining lifetime are never refreshed speculatively.
func (o *SyncOrchestrator) ensureFreshToken(ctx context.Context, account *models.OAuthAccount) (string, error) {
	if !account.TokenExpired() {
		return account.AccessToken, nil
	}

	refreshed, err := o.refresher.Refresh(ctx, account.Provider, account.RefreshToken)
	if err != nil {
		tokenRefreshTotal.WithLabelValues(string(account.Provider), "failure").Inc()
		return "", err
	}
	tokenRefreshTotal.WithLabelValues(string(account.Provider), "success").Inc()

	if err := o.accountRepo.UpdateToken(ctx, account.ID, refreshed.AccessToken, refreshed.ExpiresAt); err != nil {
		return "", err
	}
	account.AccessToken = refreshed.AccessToken
	account.ExpiresAt = refreshed.ExpiresAt
	return refreshed.AccessToken, nil
}

func (o *SyncOrchestrator) resolveWindow(req SyncRequest) services.DateWindow {
	end := utils.DayUTC(utils.UTCNow())
	if req.TargetDate != nil {
		end = utils.DayUTC(*req.TargetDate)
	}

	daysBack := req.DaysBack
	if daysBack <= 0 {
		switch req.JobType {
		case models.SyncJobInitialBackfill:
			daysBack = utils.BackfillDaysBack
		default:
			daysBack = utils.DeltaDaysBack
		}
	}

	return services.DateWindow{
		Start: end.AddDate(0, 0, -daysBack),
		End:   end,
	}
}

// fetchWindow splits the window into week-sized partitions, pausing between
// requests to stay under provider rate limits, and merges rows per campaign.
func (o *SyncOrchestrator) fetchWindow(ctx context.Context, fetcher services.PlatformFetcher, accessToken, accountID string, window services.DateWindow) ([]services.RawCampaignRecord, error) {
	const partitionDays = 7

	merged := make(map[string]*services.RawCampaignRecord)
	var order []string

	start := window.Start
	first := true
	for !start.After(window.End) {
		end := start.AddDate(0, 0, partitionDays-1)
		if end.After(window.End) {
			end = window.End
		}

		if !first {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(o.fetchDelay):
			}
		}
		first = false

		partition := services.DateWindow{Start: start, End: end}
		records, err := fetcher.FetchCampaigns(ctx, accessToken, accountID, partition)
		if err != nil {
			fetchErrorsTotal.WithLabelValues(string(fetcher.Provider()), fetchErrorKind(err)).Inc()
			return nil, err
		}

		for _, rec := range records {
			existing, ok := merged[rec.ExternalID]
			if !ok {
				r := rec
				merged[rec.ExternalID] = &r
				order = append(order, rec.ExternalID)
				continue
			}
			existing.Impressions += rec.Impressions
			existing.Clicks += rec.Clicks
			existing.Spend += rec.Spend
			existing.Conversions += rec.Conversions
			existing.ConversionValue += rec.ConversionValue
			existing.Name = rec.Name
			existing.Status = rec.Status
		}

		start = end.AddDate(0, 0, 1)
	}

	out := make([]services.RawCampaignRecord, 0, len(order))
	for _, id := range order {
		out = append(out, *merged[id])
	}
	return out, nil
}

// compareAgainstBenchmarks matches persisted campaigns to benchmark rows and
// upserts a comparison per (campaign, benchmark). Scoring errors on a single
// comparison are logged and skipped; they never fail the sync.
func (o *SyncOrchestrator) compareAgainstBenchmarks(ctx context.Context, req SyncRequest, account *models.OAuthAccount) error {
	company, err := o.companyRepo.ByID(ctx, req.CompanyID)
	if err != nil {
		return err
	}
	if company == nil {
		return fmt.Errorf("company id=%d not found", req.CompanyID)
	}
	if !company.HasIndustry() {
		o.logger.Printf("sync: company id=%d has no industry classification, skipping comparisons", company.ID)
		return nil
	}

	benchmarks, err := o.benchmarks.ByPlatform(ctx, req.Provider.PlatformName())
	if err != nil {
		return err
	}
	if len(benchmarks) == 0 {
		return nil
	}

	filter := models.CampaignFilter{
		CompanyID: &req.CompanyID,
		Provider:  &req.Provider,
	}
	campaigns, err := o.campaignRepo.ByFilter(ctx, filter, "id ASC", 0, 0)
	if err != nil {
		return err
	}

	var comparisons []*models.BenchmarkComparison
	for _, campaign := range campaigns {
		matched := MatchBenchmarks(campaign, company, benchmarks)
		for _, benchmark := range matched {
			result, err := ScoreCampaign(campaign, benchmark)
			if err != nil {
				comparisonErrorsTotal.WithLabelValues(string(req.Provider)).Inc()
				o.logger.Printf("sync: score failed campaign id=%d benchmark id=%d: %v", campaign.ID, benchmark.ID, err)
				continue
			}
			if result == nil {
				continue
			}
			comparisons = append(comparisons, &models.BenchmarkComparison{
				CompanyID:           company.ID,
				CampaignID:          campaign.ID,
				BenchmarkID:         benchmark.ID,
				KPI:                 result.KPI,
				UserValue:           result.UserValue,
				BenchmarkPercentile: result.PercentileBucket,
				PerformanceScore:    result.PerformanceScore,
			})
		}
	}

	if len(comparisons) == 0 {
		return nil
	}

	if err := repository.WithTransaction(ctx, o.db, func(txCtx context.Context) error {
		return o.comparisonRepo.UpsertBatch(txCtx, comparisons)
	}); err != nil {
		return err
	}
	comparisonsUpsertedTotal.WithLabelValues(string(req.Provider)).Add(float64(len(comparisons)))

	return nil
}

func (o *SyncOrchestrator) failSync(ctx context.Context, syncLog *models.SyncLog, account *models.OAuthAccount, cause error) {
	now := utils.UTCNow()
	syncLog.Status = models.SyncStatusFailed
	syncLog.Message = cause.Error()
	syncLog.CompletedAt = &now
	if err := o.syncLogRepo.Update(ctx, syncLog); err != nil {
		o.logger.Printf("sync: failed to persist failed sync log id=%d: %v", syncLog.ID, err)
	}

	// Auth failures require user re-authentication, so demote the account.
	if errors.Is(cause, services.ErrRefreshFailed) || errors.Is(cause, services.ErrUnauthorized) {
		if err := o.accountRepo.UpdateStatus(ctx, account.ID, models.OAuthAccountStatusError); err != nil {
			o.logger.Printf("sync: failed to mark account id=%d as error: %v", account.ID, err)
		}
	}

	o.logger.Printf("sync: failed provider=%s company_id=%d: %v", syncLog.Provider, syncLog.CompanyID, cause)
}

func fetchErrorKind(err error) string {
	switch {
	case errors.Is(err, services.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, services.ErrUnauthorized):
		return "unauthorized"
	default:
		return "other"
	}
}
