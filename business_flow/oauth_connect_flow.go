// Package businessflow contains use cases for connecting and disconnecting ad platform accounts
package businessflow

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/benchmetrics/compscore/app/dto"
	"github.com/benchmetrics/compscore/app/scheduler"
	"github.com/benchmetrics/compscore/models"
	"github.com/benchmetrics/compscore/repository"
	"github.com/benchmetrics/compscore/utils"
	"gorm.io/gorm"
)

// OAuthConnectFlow defines operations for managing ad platform connections
type OAuthConnectFlow interface {
	Connect(ctx context.Context, req *dto.ConnectOAuthAccountRequest, metadata *ClientMetadata) (*dto.ConnectOAuthAccountResponse, error)
	Disconnect(ctx context.Context, req *dto.DisconnectOAuthAccountRequest, metadata *ClientMetadata) (*dto.DisconnectOAuthAccountResponse, error)
	ListAccounts(ctx context.Context, userID uint, metadata *ClientMetadata) (*dto.ListOAuthAccountsResponse, error)
}

type OAuthConnectFlowImpl struct {
	accountRepo  repository.OAuthAccountRepository
	companyRepo  repository.CompanyRepository
	orchestrator *scheduler.SyncOrchestrator
	db           *gorm.DB
	logger       *log.Logger
}

func NewOAuthConnectFlow(
	accountRepo repository.OAuthAccountRepository,
	companyRepo repository.CompanyRepository,
	orchestrator *scheduler.SyncOrchestrator,
	db *gorm.DB,
	logger *log.Logger,
) OAuthConnectFlow {
	if logger == nil {
		logger = log.Default()
	}
	return &OAuthConnectFlowImpl{
		accountRepo:  accountRepo,
		companyRepo:  companyRepo,
		orchestrator: orchestrator,
		db:           db,
		logger:       logger,
	}
}

// Connect stores a new platform connection and kicks off the initial backfill.
// A previously active connection for the same provider is demoted, not deleted.
func (f *OAuthConnectFlowImpl) Connect(ctx context.Context, req *dto.ConnectOAuthAccountRequest, metadata *ClientMetadata) (*dto.ConnectOAuthAccountResponse, error) {
	provider := models.ProviderType(req.Provider)
	if !provider.Valid() {
		return nil, NewBusinessError("CONNECT_VALIDATION_FAILED", "Connect validation failed", ErrInvalidProvider)
	}
	if req.AccessToken == "" {
		return nil, NewBusinessError("CONNECT_VALIDATION_FAILED", "Connect validation failed", ErrAccessTokenRequired)
	}
	if req.AccountID == "" {
		return nil, NewBusinessError("CONNECT_VALIDATION_FAILED", "Connect validation failed", ErrAccountIDRequired)
	}

	company, err := f.companyRepo.ByID(ctx, req.CompanyID)
	if err != nil {
		return nil, NewBusinessError("CONNECT_FAILED", "Failed to connect account", err)
	}
	if company == nil {
		return nil, NewBusinessError("CONNECT_FAILED", "Failed to connect account", ErrCompanyNotFound)
	}

	expiresIn := time.Duration(req.ExpiresIn) * time.Second
	if expiresIn <= 0 {
		expiresIn = utils.DefaultTokenTTL
	}

	account := &models.OAuthAccount{
		UserID:       req.UserID,
		CompanyID:    req.CompanyID,
		Provider:     provider,
		AccountID:    req.AccountID,
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
		ExpiresAt:    utils.UTCNow().Add(expiresIn),
		Status:       models.OAuthAccountStatusActive,
	}

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		if err := f.accountRepo.DemoteActive(txCtx, req.UserID, provider); err != nil {
			return err
		}
		return f.accountRepo.Save(txCtx, account)
	})
	if err != nil {
		return nil, NewBusinessError("CONNECT_FAILED", "Failed to connect account", err)
	}

	// Initial backfill runs outside the request so a slow provider does not
	// block the connect response.
	if f.orchestrator != nil {
		go func() {
			bg, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()

			syncLog, err := f.orchestrator.RunSync(bg, scheduler.SyncRequest{
				UserID:    req.UserID,
				CompanyID: req.CompanyID,
				Provider:  provider,
				JobType:   models.SyncJobInitialBackfill,
			})
			if err != nil {
				f.logger.Printf("initial backfill failed for account %s: %v", account.UUID, err)
				return
			}
			f.logger.Printf("initial backfill completed for account %s: sync %s, %d records",
				account.UUID, syncLog.UUID, syncLog.RecordsSynced)
		}()
	}

	return &dto.ConnectOAuthAccountResponse{
		Message: fmt.Sprintf("%s account connected successfully. Initial sync started.", provider.PlatformName()),
		Account: ToOAuthAccountDTO(*account),
	}, nil
}

// Disconnect marks the active connection for the provider as disconnected
func (f *OAuthConnectFlowImpl) Disconnect(ctx context.Context, req *dto.DisconnectOAuthAccountRequest, metadata *ClientMetadata) (*dto.DisconnectOAuthAccountResponse, error) {
	provider := models.ProviderType(req.Provider)
	if !provider.Valid() {
		return nil, NewBusinessError("DISCONNECT_VALIDATION_FAILED", "Disconnect validation failed", ErrInvalidProvider)
	}

	account, err := f.accountRepo.ActiveByUserAndProvider(ctx, req.UserID, provider)
	if err != nil {
		return nil, NewBusinessError("DISCONNECT_FAILED", "Failed to disconnect account", err)
	}
	if account == nil {
		return nil, NewBusinessError("DISCONNECT_FAILED", "Failed to disconnect account", ErrAccountNotFound)
	}

	if err := f.accountRepo.UpdateStatus(ctx, account.ID, models.OAuthAccountStatusDisconnected); err != nil {
		return nil, NewBusinessError("DISCONNECT_FAILED", "Failed to disconnect account", err)
	}

	return &dto.DisconnectOAuthAccountResponse{
		Message: fmt.Sprintf("%s account disconnected successfully", provider.PlatformName()),
	}, nil
}

// ListAccounts returns all connections of the user, newest first
func (f *OAuthConnectFlowImpl) ListAccounts(ctx context.Context, userID uint, metadata *ClientMetadata) (*dto.ListOAuthAccountsResponse, error) {
	filter := models.OAuthAccountFilter{UserID: &userID}

	rows, err := f.accountRepo.ByFilter(ctx, filter, "created_at DESC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("LIST_ACCOUNTS_FAILED", "Failed to list connected accounts", err)
	}

	items := make([]dto.OAuthAccountDTO, 0, len(rows))
	for _, r := range rows {
		items = append(items, ToOAuthAccountDTO(*r))
	}

	return &dto.ListOAuthAccountsResponse{
		Message: "Connected accounts retrieved successfully",
		Items:   items,
	}, nil
}
