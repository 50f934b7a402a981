package repo

import "context"

// ReportRepo 报告仓库接口
type ReportRepo interface {
	// Latest 返回最近一次发布的原始文档，不存在时返回 NotFound 错误
	Latest(ctx context.Context) ([]byte, error)
}
