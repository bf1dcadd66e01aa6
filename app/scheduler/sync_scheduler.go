package scheduler

import (
	"context"
	"io"
	"log"
	"os"
	"time"

	"github.com/benchmetrics/compscore/config"
	"github.com/benchmetrics/compscore/models"
	"github.com/benchmetrics/compscore/repository"
	"gopkg.in/natefinch/lumberjack.v2"
)

// SyncScheduler periodically runs a daily-delta sync for every active OAuth
// account. Manual syncs and initial backfills go through the business flow
// instead.
type SyncScheduler struct {
	accountRepo  repository.OAuthAccountRepository
	orchestrator *SyncOrchestrator
	logger       *log.Logger
	interval     time.Duration
	fetchTimeout time.Duration
}

func NewSyncScheduler(
	accountRepo repository.OAuthAccountRepository,
	orchestrator *SyncOrchestrator,
	cfg config.SchedulerConfig,
	logCfg config.LoggingConfig,
) *SyncScheduler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	fetchTimeout := cfg.FetchTimeout
	if fetchTimeout <= 0 {
		fetchTimeout = 2 * time.Minute
	}

	s := &SyncScheduler{
		accountRepo:  accountRepo,
		orchestrator: orchestrator,
		logger:       newSyncLogger(logCfg),
		interval:     interval,
		fetchTimeout: fetchTimeout,
	}
	s.orchestrator.logger = s.logger
	return s
}

// newSyncLogger writes sync pipeline logs to stdout and a rotating file.
func newSyncLogger(cfg config.LoggingConfig) *log.Logger {
	if !cfg.EnableSyncLog || cfg.SyncLogPath == "" {
		return log.New(os.Stdout, "sync ", log.LstdFlags|log.Lmicroseconds|log.LUTC)
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.SyncLogPath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}
	mw := io.MultiWriter(os.Stdout, rotator)
	return log.New(mw, "sync ", log.LstdFlags|log.Lmicroseconds|log.LUTC)
}

// Start launches the scheduler loop in a background goroutine and returns a
// stop function.
func (s *SyncScheduler) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()

	return cancel
}

func (s *SyncScheduler) runOnce(ctx context.Context) {
	const pageSize = 200

	offset := 0
	for {
		accounts, err := s.accountRepo.ListActive(ctx, pageSize, offset)
		if err != nil {
			s.logger.Printf("scheduler: list active accounts failed: %v", err)
			return
		}
		if len(accounts) == 0 {
			return
		}
		s.logger.Printf("scheduler: running daily delta for %d accounts (offset=%d)", len(accounts), offset)

		for _, account := range accounts {
			select {
			case <-ctx.Done():
				return
			default:
			}
			s.syncAccount(ctx, account)
		}

		if len(accounts) < pageSize {
			return
		}
		offset += pageSize
	}
}

func (s *SyncScheduler) syncAccount(ctx context.Context, account *models.OAuthAccount) {
	syncCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	req := SyncRequest{
		UserID:    account.UserID,
		CompanyID: account.CompanyID,
		Provider:  account.Provider,
		JobType:   models.SyncJobDailyDelta,
	}
	if _, err := s.orchestrator.RunSync(syncCtx, req); err != nil {
		s.logger.Printf("scheduler: daily delta failed account id=%d provider=%s: %v", account.ID, account.Provider, err)
	}
}
