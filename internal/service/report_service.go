package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository"
)

// The cached report lives under a key suffixed with the current generation.
// Invalidate bumps the generation, so a build that started before a change
// writes to a key no reader will look up again.
const (
	reportGenerationKey = "report:generation"
	reportCacheKey      = "report:%d"
)

// NoResolutionData is shown when no ticket has been solved yet.
const NoResolutionData = "no data"

// ReportService assembles the dashboard report from the aggregate views.
type ReportService struct {
	reports repository.ReportRepository
	cache   *redis.Client
	ttl     time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

// ReportDependencies bundles collaborators for the report service.
type ReportDependencies struct {
	ReportRepo repository.ReportRepository
	Cache      *redis.Client
	CacheTTL   time.Duration
	Logger     *zap.Logger
	Clock      func() time.Time
}

// NewReportService constructs the service. A nil cache or zero TTL disables caching.
func NewReportService(deps ReportDependencies) *ReportService {
	s := &ReportService{
		reports: deps.ReportRepo,
		cache:   deps.Cache,
		ttl:     deps.CacheTTL,
		logger:  deps.Logger,
		now:     deps.Clock,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// RegisterHandlers drops the cached report whenever a ticket changes.
func (s *ReportService) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	events.SubscribeChanges(dispatcher, func(ctx context.Context, _ events.Event) error {
		return s.Invalidate(ctx)
	})
}

// Invalidate starts a new cache generation and drops the current entry.
func (s *ReportService) Invalidate(ctx context.Context) error {
	if !s.cacheEnabled() {
		return nil
	}
	next, err := s.cache.Incr(ctx, reportGenerationKey).Result()
	if err != nil {
		return err
	}
	return s.cache.Del(ctx, fmt.Sprintf(reportCacheKey, next-1)).Err()
}

// Build returns the current report, from cache when fresh.
func (s *ReportService) Build(ctx context.Context) (*domain.Report, error) {
	if !s.cacheEnabled() {
		return s.assemble(ctx)
	}

	gen, err := s.generation(ctx)
	if err != nil {
		s.logger.Warn("report cache unavailable", zap.Error(err))
		return s.assemble(ctx)
	}
	key := fmt.Sprintf(reportCacheKey, gen)
	if cached, ok := s.cached(ctx, key); ok {
		return cached, nil
	}

	report, err := s.assemble(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(report)
	if err == nil {
		err = s.cache.Set(ctx, key, payload, s.ttl).Err()
	}
	if err != nil {
		s.logger.Warn("report cache write failed", zap.Error(err))
	}
	return report, nil
}

func (s *ReportService) generation(ctx context.Context) (int64, error) {
	gen, err := s.cache.Get(ctx, reportGenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (s *ReportService) cacheEnabled() bool {
	return s.cache != nil && s.ttl > 0
}

func (s *ReportService) cached(ctx context.Context, key string) (*domain.Report, bool) {
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("report cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var report domain.Report
	if err := json.Unmarshal(raw, &report); err != nil {
		s.logger.Warn("discarding corrupt cached report", zap.Error(err))
		return nil, false
	}
	return &report, true
}

func (s *ReportService) assemble(ctx context.Context) (*domain.Report, error) {
	report := &domain.Report{GeneratedAt: s.now().In(domain.Zone)}
	var err error

	if report.StatusCounts, err = s.reports.StatusCounts(ctx); err != nil {
		return nil, fmt.Errorf("status counts: %w", err)
	}
	if report.PriorityCounts, err = s.reports.PriorityCounts(ctx); err != nil {
		return nil, fmt.Errorf("priority counts: %w", err)
	}
	if report.DepartmentCounts, err = s.reports.DepartmentCounts(ctx); err != nil {
		return nil, fmt.Errorf("department counts: %w", err)
	}
	if report.AssigneeCounts, err = s.reports.AssigneeCounts(ctx); err != nil {
		return nil, fmt.Errorf("assignee counts: %w", err)
	}
	if report.AssigneeStatusCounts, err = s.reports.AssigneeStatusCounts(ctx); err != nil {
		return nil, fmt.Errorf("assignee status counts: %w", err)
	}
	if report.HourlyCounts, err = s.reports.HourlyCounts(ctx); err != nil {
		return nil, fmt.Errorf("hourly counts: %w", err)
	}
	if report.Recent, err = s.reports.RecentTickets(ctx); err != nil {
		return nil, fmt.Errorf("recent tickets: %w", err)
	}
	if report.Summary, err = s.reports.SummaryTickets(ctx); err != nil {
		return nil, fmt.Errorf("summary tickets: %w", err)
	}

	for _, bucket := range report.StatusCounts {
		report.TotalTickets += bucket.Count
	}
	report.ResolutionRate = domain.ResolutionRate(report.StatusCounts)

	avgText, err := s.reports.AverageResolution(ctx)
	if err != nil {
		return nil, err
	}
	report.AverageResolutionText = NoResolutionData
	if avgText != "" {
		avg, err := domain.ParseInterval(avgText)
		if err != nil {
			s.logger.Warn("unparseable average resolution", zap.String("value", avgText), zap.Error(err))
		} else {
			report.AverageResolution = &avg
			report.AverageResolutionText = domain.FormatDuration(avg)
		}
	}
	return report, nil
}
