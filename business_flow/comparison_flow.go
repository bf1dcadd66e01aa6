// Package businessflow contains use cases for reading and exporting benchmark comparisons
package businessflow

import (
	"context"
	"fmt"
	"time"

	"github.com/benchmetrics/compscore/app/dto"
	"github.com/benchmetrics/compscore/models"
	"github.com/benchmetrics/compscore/repository"
	"github.com/xuri/excelize/v2"
)

// ComparisonFlow defines user-facing operations for scored benchmark comparisons
type ComparisonFlow interface {
	ListComparisons(ctx context.Context, req *dto.ListComparisonsRequest, metadata *ClientMetadata) (*dto.ListComparisonsResponse, error)
	ExportComparisons(ctx context.Context, req *dto.ExportComparisonsRequest, metadata *ClientMetadata) (string, []byte, error)
}

type ComparisonFlowImpl struct {
	comparisonRepo repository.BenchmarkComparisonRepository
	campaignRepo   repository.CampaignRepository
}

func NewComparisonFlow(
	comparisonRepo repository.BenchmarkComparisonRepository,
	campaignRepo repository.CampaignRepository,
) ComparisonFlow {
	return &ComparisonFlowImpl{
		comparisonRepo: comparisonRepo,
		campaignRepo:   campaignRepo,
	}
}

// ListComparisons returns scored comparisons. With a campaign UUID the result
// is scoped to that campaign; otherwise the whole company is paged.
func (f *ComparisonFlowImpl) ListComparisons(ctx context.Context, req *dto.ListComparisonsRequest, metadata *ClientMetadata) (*dto.ListComparisonsResponse, error) {
	page := req.Page
	if page == 0 {
		page = 1
	}
	if page < 1 {
		return nil, NewBusinessError("LIST_COMPARISONS_VALIDATION_FAILED", "List comparisons validation failed", ErrInvalidPage)
	}

	pageSize := req.PageSize
	if pageSize == 0 {
		pageSize = 50
	}
	if pageSize < 1 || pageSize > 100 {
		return nil, NewBusinessError("LIST_COMPARISONS_VALIDATION_FAILED", "List comparisons validation failed", ErrInvalidPageSize)
	}

	var rows []*models.BenchmarkComparison
	var total int64
	var err error

	if req.CampaignUUID != "" {
		campaign, err := f.campaignRepo.ByUUID(ctx, req.CampaignUUID)
		if err != nil {
			return nil, NewBusinessError("LIST_COMPARISONS_FAILED", "Failed to list comparisons", err)
		}
		if campaign == nil {
			return nil, NewBusinessError("LIST_COMPARISONS_FAILED", "Failed to list comparisons", ErrCampaignNotFound)
		}
		if campaign.CompanyID != req.CompanyID {
			return nil, NewBusinessError("LIST_COMPARISONS_FAILED", "Failed to list comparisons", ErrCampaignAccessDenied)
		}

		rows, err = f.comparisonRepo.ByCampaignID(ctx, campaign.ID)
		if err != nil {
			return nil, NewBusinessError("LIST_COMPARISONS_FAILED", "Failed to list comparisons", err)
		}
		total = int64(len(rows))
	} else {
		offset := (page - 1) * pageSize
		rows, err = f.comparisonRepo.ByCompanyID(ctx, req.CompanyID, pageSize, offset)
		if err != nil {
			return nil, NewBusinessError("LIST_COMPARISONS_FAILED", "Failed to list comparisons", err)
		}
		total, err = f.comparisonRepo.Count(ctx, models.BenchmarkComparisonFilter{CompanyID: &req.CompanyID})
		if err != nil {
			return nil, NewBusinessError("LIST_COMPARISONS_FAILED", "Failed to list comparisons", err)
		}
	}

	items := make([]dto.ComparisonDTO, 0, len(rows))
	for _, r := range rows {
		items = append(items, ToComparisonDTO(*r))
	}

	return &dto.ListComparisonsResponse{
		Message: "Comparisons retrieved successfully",
		Items:   items,
		Page:    page,
		Total:   total,
	}, nil
}

// ExportComparisons builds an Excel workbook with every scored comparison of
// the company and returns the filename and file contents.
func (f *ComparisonFlowImpl) ExportComparisons(ctx context.Context, req *dto.ExportComparisonsRequest, metadata *ClientMetadata) (string, []byte, error) {
	rows, err := f.comparisonRepo.ByCompanyID(ctx, req.CompanyID, 0, 0)
	if err != nil {
		return "", nil, NewBusinessError("EXPORT_COMPARISONS_FAILED", "Failed to export comparisons", err)
	}
	if len(rows) == 0 {
		return "", nil, NewBusinessError("EXPORT_COMPARISONS_FAILED", "Failed to export comparisons", ErrNoComparisonsFound)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := "Comparisons"
	xl.SetSheetName(xl.GetSheetName(0), sheet)

	header := []string{"campaign", "provider", "channel", "kpi", "your_value", "benchmark_p25", "benchmark_median", "benchmark_p75", "percentile_bucket", "performance_score", "industry", "updated_at"}
	_ = xl.SetSheetRow(sheet, "A1", &header)

	for ri, r := range rows {
		campaignName := ""
		providerName := ""
		channel := ""
		if r.Campaign != nil {
			campaignName = r.Campaign.Name
			providerName = r.Campaign.Provider.PlatformName()
			channel = r.Campaign.Channel.String()
		}
		var p25, median, p75 float64
		industry := ""
		if r.Benchmark != nil {
			p25 = r.Benchmark.Percentile25
			median = r.Benchmark.Median
			p75 = r.Benchmark.Percentile75
			industry = r.Benchmark.Industry
		}
		updatedAt := r.CreatedAt
		if r.UpdatedAt != nil {
			updatedAt = *r.UpdatedAt
		}

		record := []any{
			campaignName,
			providerName,
			channel,
			r.KPI.String(),
			r.UserValue,
			p25,
			median,
			p75,
			r.DisplayBucket(),
			r.PerformanceScore,
			industry,
			updatedAt.UTC().Format(time.RFC3339),
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
		_ = xl.SetSheetRow(sheet, cellRef, &record)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}

	filename := fmt.Sprintf("benchmark_comparisons_%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	return filename, buf.Bytes(), nil
}
