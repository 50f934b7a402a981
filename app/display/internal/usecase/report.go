package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/market_brief/app/display/internal/domain"
	"github.com/iWorld-y/market_brief/app/display/internal/repo"
)

// ReportUseCase 报告业务逻辑，带短时缓存
type ReportUseCase struct {
	repo repo.ReportRepo
	log  *log.Helper
	ttl  time.Duration
	now  func() time.Time

	mu        sync.Mutex
	cached    *domain.Brief
	fetchedAt time.Time
}

// NewReportUseCase 创建报告业务逻辑实例，ttl 为 0 表示不缓存
func NewReportUseCase(repo repo.ReportRepo, ttl time.Duration, logger log.Logger) *ReportUseCase {
	return &ReportUseCase{repo: repo, ttl: ttl, now: time.Now, log: log.NewHelper(logger)}
}

// Latest 返回最近一次发布的简报。
// 远端读取失败但有旧缓存时返回旧缓存。
func (uc *ReportUseCase) Latest(ctx context.Context) (*domain.Brief, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if uc.cached != nil && uc.ttl > 0 && uc.now().Sub(uc.fetchedAt) < uc.ttl {
		return uc.cached, nil
	}

	raw, err := uc.repo.Latest(ctx)
	if err != nil {
		if uc.cached != nil && !errors.IsNotFound(err) {
			uc.log.WithContext(ctx).Warnf("refresh report failed, serving cached copy: %v", err)
			return uc.cached, nil
		}
		return nil, err
	}

	brief, err := domain.ParseBrief(raw)
	if err != nil {
		return nil, errors.InternalServer("REPORT_MALFORMED", "published report is not valid JSON").WithCause(err)
	}
	uc.cached = brief
	uc.fetchedAt = uc.now()
	return brief, nil
}
