package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/cohort-analytics-api/internal/models"
	appErrors "github.com/noah-isme/cohort-analytics-api/pkg/errors"
)

const (
	reportKeyPrefix    = "analytics"
	reportKeySeparator = ":"
	defaultReportTTL   = 5 * time.Minute
)

var (
	keyPartEscaper = strings.NewReplacer(reportKeySeparator, "|")
	// globEscaper quotes Redis MATCH metacharacters.
	globEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`, "[", `\[`, "]", `\]`)
)

// CacheRepository abstracts persistence for cached report payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService stores rendered reports under
// analytics:<report>:<teacher>:<start>:<end>[:extra]. A disabled or
// repository-less service behaves as a permanent miss.
type CacheService struct {
	repo    CacheRepository
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
	enabled bool
}

// NewCacheService constructs a report cache.
func NewCacheService(repo CacheRepository, metrics *MetricsService, ttl time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if ttl <= 0 {
		ttl = defaultReportTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, ttl: ttl, logger: logger.With(zap.String("cache", reportKeyPrefix)), enabled: enabled}
}

// Enabled reports whether reports are cached at all.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Get decodes the report stored at key into dest. Misses are not errors;
// backend failures are returned so callers can degrade to a rebuild.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, appErrors.ErrCacheMiss):
		return false, nil
	default:
		s.logger.Warn("report cache read failed", zap.String("report_key", key), zap.Error(err))
		return false, err
	}
}

// Set stores a built report; a non-positive ttl uses the configured one.
func (s *CacheService) Set(ctx context.Context, key string, report interface{}, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	if ttl <= 0 {
		ttl = s.ttl
	}
	start := time.Now()
	err := s.repo.Set(ctx, key, report, ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("report cache write failed", zap.String("report_key", key), zap.Duration("ttl", ttl), zap.Error(err))
	}
	return err
}

// InvalidateTeacher drops every cached report for teacherID, whatever the
// report kind or window.
func (s *CacheService) InvalidateTeacher(ctx context.Context, teacherID string) error {
	if !s.Enabled() {
		return nil
	}
	pattern := strings.Join([]string{reportKeyPrefix, "*", globEscaper.Replace(keyPartEscaper.Replace(teacherID)), "*"}, reportKeySeparator)
	if err := s.repo.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("report cache invalidation failed", zap.String("teacher_id", teacherID), zap.Error(err))
		return err
	}
	s.logger.Debug("report cache invalidated", zap.String("teacher_id", teacherID))
	return nil
}

// reportCacheKey builds the key for one report over one window. Separators
// inside parts are escaped so distinct inputs never collide.
func reportCacheKey(report, teacherID string, window models.AnalyticsWindow, extra ...string) string {
	parts := []string{reportKeyPrefix, report, teacherID, window.Start.UTC().Format(time.RFC3339), window.End.UTC().Format(time.RFC3339)}
	parts = append(parts, extra...)
	for i := range parts {
		parts[i] = keyPartEscaper.Replace(parts[i])
	}
	return strings.Join(parts, reportKeySeparator)
}
