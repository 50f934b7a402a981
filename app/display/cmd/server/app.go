package main

import (
	"time"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/market_brief/app/display/internal/conf"
	"github.com/iWorld-y/market_brief/app/display/internal/data"
	"github.com/iWorld-y/market_brief/app/display/internal/server"
	"github.com/iWorld-y/market_brief/app/display/internal/service"
	"github.com/iWorld-y/market_brief/app/display/internal/usecase"
)

// initApp 按 data -> usecase -> service -> server 的顺序组装应用
func initApp(cs *conf.Server, cd *conf.Data, logger log.Logger) (*kratos.App, func(), error) {
	if cd == nil {
		cd = &conf.Data{Target: "file"}
	}
	d, cleanup, err := data.NewData(cd, logger)
	if err != nil {
		return nil, nil, err
	}

	var ttl time.Duration
	if cd.CacheTTL != "" {
		if ttl, err = time.ParseDuration(cd.CacheTTL); err != nil {
			cleanup()
			return nil, nil, err
		}
	}

	reportRepo := data.NewReportRepo(d, logger)
	reportUseCase := usecase.NewReportUseCase(reportRepo, ttl, logger)
	displayService := service.NewDisplayService(reportUseCase, logger)
	httpServer := server.NewHTTPServer(cs, displayService, logger)
	return newApp(logger, httpServer), cleanup, nil
}

func newApp(logger log.Logger, hs *http.Server) *kratos.App {
	return kratos.New(
		kratos.ID(id),
		kratos.Name(Name),
		kratos.Version(Version),
		kratos.Metadata(map[string]string{}),
		kratos.Logger(logger),
		kratos.Server(hs),
	)
}
