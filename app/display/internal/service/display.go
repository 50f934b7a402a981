package service

import (
	"encoding/json"
	"net/http"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/market_brief/app/display/internal/usecase"
)

type DisplayService struct {
	ucReport *usecase.ReportUseCase
	log      *log.Helper
}

func NewDisplayService(ucReport *usecase.ReportUseCase, logger log.Logger) *DisplayService {
	return &DisplayService{
		ucReport: ucReport,
		log:      log.NewHelper(logger),
	}
}

type priceReply struct {
	Asset string `json:"asset"`
	Value string `json:"value"`
}

type newsLinkReply struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// BriefReply 页面挂件使用的精简视图
type BriefReply struct {
	Date      string          `json:"date"`
	Bias      string          `json:"bias"`
	BiasColor string          `json:"bias_color"`
	Summary   string          `json:"summary"`
	Updated   string          `json:"updated"`
	Prices    []priceReply    `json:"prices"`
	NewsLinks []newsLinkReply `json:"news_links"`
}

// GetReport 原样返回最近一次发布的文档
func (s *DisplayService) GetReport(w http.ResponseWriter, r *http.Request) {
	b, err := s.ucReport.Latest(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write(b.Raw)
}

// GetBrief 返回精简视图
func (s *DisplayService) GetBrief(w http.ResponseWriter, r *http.Request) {
	b, err := s.ucReport.Latest(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	reply := BriefReply{
		Date:      b.Date,
		Bias:      b.Bias,
		BiasColor: b.BiasColor,
		Summary:   b.Summary,
		Updated:   b.Updated,
		Prices:    make([]priceReply, 0, len(b.Prices)),
		NewsLinks: make([]newsLinkReply, 0, len(b.NewsLinks)),
	}
	for _, p := range b.Prices {
		reply.Prices = append(reply.Prices, priceReply{Asset: p.Asset, Value: p.Value})
	}
	for _, n := range b.NewsLinks {
		reply.NewsLinks = append(reply.NewsLinks, newsLinkReply{Title: n.Title, URL: n.URL})
	}
	s.writeJSON(w, http.StatusOK, reply)
}

func (s *DisplayService) Healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *DisplayService) writeError(w http.ResponseWriter, err error) {
	e := errors.FromError(err)
	if e.Code >= http.StatusInternalServerError {
		s.log.Errorf("request failed: %v", err)
	}
	s.writeJSON(w, int(e.Code), map[string]any{
		"code":    e.Code,
		"reason":  e.Reason,
		"message": e.Message,
	})
}

func (s *DisplayService) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Errorf("write response failed: %v", err)
	}
}
