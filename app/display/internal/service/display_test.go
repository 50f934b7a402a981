package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/market_brief/app/display/internal/usecase"
)

type stubRepo struct {
	doc []byte
	err error
}

func (s *stubRepo) Latest(context.Context) ([]byte, error) { return s.doc, s.err }

const published = `{
  "date": "January 15, 2026",
  "btc_price": "$50,000.00",
  "eth_price": "$3,000.00",
  "news_links": [{"title": "ETF flows", "url": "https://example.com/etf"}],
  "bias": "BULLISH",
  "bias_color": "#00FF00",
  "summary": "Buy dips",
  "updated": "14:05 UTC"
}`

func newService(repo *stubRepo) *DisplayService {
	return NewDisplayService(usecase.NewReportUseCase(repo, 0, log.DefaultLogger), log.DefaultLogger)
}

func TestGetReport(t *testing.T) {
	s := newService(&stubRepo{doc: []byte(published)})
	rec := httptest.NewRecorder()
	s.GetReport(rec, httptest.NewRequest(http.MethodGet, "/api/report", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, published, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
}

func TestGetBrief(t *testing.T) {
	s := newService(&stubRepo{doc: []byte(published)})
	rec := httptest.NewRecorder()
	s.GetBrief(rec, httptest.NewRequest(http.MethodGet, "/api/brief", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var reply BriefReply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	assert.Equal(t, "#00FF00", reply.BiasColor)
	assert.Equal(t, []priceReply{{"BTC", "$50,000.00"}, {"ETH", "$3,000.00"}}, reply.Prices)
	assert.Equal(t, "https://example.com/etf", reply.NewsLinks[0].URL)
}

func TestGetReport_NotFound(t *testing.T) {
	s := newService(&stubRepo{err: errors.NotFound("REPORT_NOT_FOUND", "no report has been published yet")})
	rec := httptest.NewRecorder()
	s.GetReport(rec, httptest.NewRequest(http.MethodGet, "/api/report", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "REPORT_NOT_FOUND")
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	newService(&stubRepo{}).Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
