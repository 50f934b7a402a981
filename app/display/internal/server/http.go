package server

import (
	"embed"
	nethttp "net/http"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/market_brief/app/display/internal/conf"
	"github.com/iWorld-y/market_brief/app/display/internal/service"
)

//go:embed assets/*
var assets embed.FS

func NewHTTPServer(c *conf.Server, s *service.DisplayService, logger log.Logger) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
		),
	}
	if c != nil && c.Http != nil {
		if c.Http.Addr != "" {
			opts = append(opts, http.Address(c.Http.Addr))
		}
		if c.Http.Timeout != "" {
			if d, err := time.ParseDuration(c.Http.Timeout); err == nil {
				opts = append(opts, http.Timeout(d))
			}
		}
	}

	helper := log.NewHelper(logger)
	srv := http.NewServer(opts...)
	srv.HandleFunc("/api/report", s.GetReport)
	srv.HandleFunc("/api/brief", s.GetBrief)
	srv.HandleFunc("/healthz", s.Healthz)

	// 首页挂件
	srv.HandleFunc("/", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.URL.Path != "/" {
			nethttp.NotFound(w, r)
			return
		}
		content, err := assets.ReadFile("assets/index.html")
		if err != nil {
			helper.Errorf("read index.html failed: %v", err)
			nethttp.Error(w, "internal error", nethttp.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(content)
	})

	return srv
}
