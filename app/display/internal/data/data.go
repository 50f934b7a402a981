package data

import (
	"context"
	"fmt"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/market_brief/app/display/internal/conf"
	"github.com/iWorld-y/market_brief/app/market_brief/pkg/config"
	"github.com/iWorld-y/market_brief/app/market_brief/pkg/publish"
)

type Data struct {
	reader publish.Reader
}

// NewData 按配置连接报告的发布目标
func NewData(c *conf.Data, logger log.Logger) (*Data, func(), error) {
	target, err := publish.New(context.Background(), publishConfig(c))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open report source: %w", err)
	}

	cleanup := func() {
		log.NewHelper(logger).Info("closing the data resources")
		_ = target.Close()
	}
	return &Data{reader: target}, cleanup, nil
}

// publishConfig 将 internal/conf.Data 转换为 publish 使用的配置
func publishConfig(c *conf.Data) config.PublishConfig {
	pc := config.PublishConfig{Target: c.Target}
	if c.Gist != nil {
		pc.Gist = config.GistConfig{
			Token:    c.Gist.Token,
			ID:       c.Gist.Id,
			Filename: c.Gist.Filename,
			BaseURL:  c.Gist.BaseUrl,
		}
	}
	if c.File != nil {
		pc.File = config.FileConfig{Path: c.File.Path}
	}
	if c.Redis != nil {
		pc.Redis = config.RedisConfig{URL: c.Redis.Url, Key: c.Redis.Key}
	}
	if c.Postgres != nil {
		pc.Postgres = config.PostgresConfig{DSN: c.Postgres.Dsn, Name: c.Postgres.Name}
	}
	return pc
}
