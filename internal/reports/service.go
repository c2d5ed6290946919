// Package reports exposes the reporting API surface: cache-fronted period
// statistics and budget execution reports.
package reports

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joshsymonds/tally/internal/budget"
	"github.com/joshsymonds/tally/internal/model"
	"github.com/joshsymonds/tally/internal/reportcache"
	"github.com/joshsymonds/tally/internal/service"
	"github.com/joshsymonds/tally/internal/stats"
)

// Service computes reports over the ledger, memoizing aggregation results
// per owner and filter.
type Service struct {
	storage  service.Storage
	basic    *reportcache.Cache[stats.PeriodStats]
	extended *reportcache.Cache[stats.ExtendedPeriodStats]
}

// New creates a reports service. TTL and size fall back to the cache
// defaults when non-positive.
func New(storage service.Storage, maxSize int, ttl time.Duration) *Service {
	return &Service{
		storage:  storage,
		basic:    reportcache.New[stats.PeriodStats](maxSize, ttl),
		extended: reportcache.New[stats.ExtendedPeriodStats](maxSize, ttl),
	}
}

// InvalidateOwner drops all cached reports for the owner. The ledger
// service calls this after every committed transaction write.
func (s *Service) InvalidateOwner(ownerID int64) {
	s.basic.InvalidateOwner(ownerID)
	s.extended.InvalidateOwner(ownerID)
}

// PeriodStats returns the basic aggregation for the owner's transactions
// matching the filter.
func (s *Service) PeriodStats(ctx context.Context, ownerID int64, filter service.TransactionFilter) (stats.PeriodStats, error) {
	signature := reportcache.FilterSignature(filter)
	if cached, ok := s.basic.Get(ownerID, signature); ok {
		slog.Debug("period stats served from cache", "owner", ownerID)
		return cached, nil
	}

	txns, names, err := s.load(ctx, ownerID, filter)
	if err != nil {
		return stats.PeriodStats{}, err
	}

	result := stats.Compute(txns, names)
	s.basic.Put(ownerID, signature, result)
	return result, nil
}

// ExtendedPeriodStats returns the aggregation including heatmap and
// expense-frequency data.
func (s *Service) ExtendedPeriodStats(ctx context.Context, ownerID int64, filter service.TransactionFilter) (stats.ExtendedPeriodStats, error) {
	signature := reportcache.FilterSignature(filter)
	if cached, ok := s.extended.Get(ownerID, signature); ok {
		slog.Debug("extended period stats served from cache", "owner", ownerID)
		return cached, nil
	}

	txns, names, err := s.load(ctx, ownerID, filter)
	if err != nil {
		return stats.ExtendedPeriodStats{}, err
	}

	result := stats.ComputeExtended(txns, names)
	s.extended.Put(ownerID, signature, result)
	return result, nil
}

// BudgetReport evaluates a budget against the transactions in its period.
// Budget reports are not cached: they are cheap relative to the filtered
// aggregations and always reflect the latest writes.
func (s *Service) BudgetReport(ctx context.Context, ownerID, budgetID int64) (budget.Report, error) {
	b, err := s.storage.GetBudgetByID(ctx, budgetID, ownerID)
	if err != nil {
		return budget.Report{}, err
	}

	limits, err := s.storage.GetBudgetCategoryLimits(ctx, budgetID)
	if err != nil {
		return budget.Report{}, err
	}

	start, end := b.StartDate, b.EndDate
	filter := service.TransactionFilter{StartDate: &start, EndDate: &end}
	txns, names, err := s.load(ctx, ownerID, filter)
	if err != nil {
		return budget.Report{}, err
	}

	return budget.Evaluate(b, limits, names, txns), nil
}

// EligibleBudgetCategories returns the categories a budget limit may
// reference: outcome categories visible to the owner.
func (s *Service) EligibleBudgetCategories(ctx context.Context, ownerID int64) ([]model.Category, error) {
	return s.storage.GetCategoriesByType(ctx, ownerID, model.TypeOutcome)
}

// load fetches the filtered transactions plus the owner's category name
// index used for display labels.
func (s *Service) load(ctx context.Context, ownerID int64, filter service.TransactionFilter) ([]model.Transaction, map[int64]string, error) {
	txns, err := s.storage.GetTransactions(ctx, ownerID, filter)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	categories, err := s.storage.GetCategories(ctx, ownerID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load categories: %w", err)
	}

	names := make(map[int64]string, len(categories))
	for i := range categories {
		names[categories[i].ID] = categories[i].Name
	}
	return txns, names, nil
}
