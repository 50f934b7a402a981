package data

import (
	"context"
	stderrors "errors"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/market_brief/app/display/internal/repo"
	"github.com/iWorld-y/market_brief/app/market_brief/pkg/publish"
)

// ErrReportNotFound 还没有发布过报告
var ErrReportNotFound = errors.NotFound("REPORT_NOT_FOUND", "no report has been published yet")

type reportRepo struct {
	data *Data
	log  *log.Helper
}

func NewReportRepo(data *Data, logger log.Logger) repo.ReportRepo {
	return &reportRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func (r *reportRepo) Latest(ctx context.Context) ([]byte, error) {
	doc, err := r.data.reader.Load(ctx)
	if stderrors.Is(err, publish.ErrNotFound) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		r.log.WithContext(ctx).Errorf("load report failed: %v", err)
		return nil, errors.ServiceUnavailable("REPORT_SOURCE_UNAVAILABLE", "report source unavailable").WithCause(err)
	}
	return doc, nil
}
