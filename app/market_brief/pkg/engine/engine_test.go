package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/iWorld-y/market_brief/app/market_brief/pkg/evidence"
	"github.com/iWorld-y/market_brief/app/market_brief/pkg/llm"
	"github.com/iWorld-y/market_brief/app/market_brief/pkg/model"
	"github.com/iWorld-y/market_brief/app/market_brief/pkg/normalize"
	"github.com/iWorld-y/market_brief/app/market_brief/pkg/search"
	"github.com/iWorld-y/market_brief/app/market_brief/pkg/variant"
)

func TestMain(m *testing.M) {
	// go.opencensus.io (pulled in via genai) starts a stats worker in its package init.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

type fakeCollector struct {
	items []model.EvidenceItem
	err   error
}

func (f *fakeCollector) Collect(context.Context, []string) ([]model.EvidenceItem, error) {
	return f.items, f.err
}

type fakePrices struct {
	snap model.PriceSnapshot
	err  error
}

func (f *fakePrices) Fetch(context.Context, []model.Asset) (model.PriceSnapshot, error) {
	return f.snap, f.err
}

type fakeLLM struct {
	mu      sync.Mutex
	out     string
	err     error
	prompts []string
}

func (f *fakeLLM) Generate(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.out, f.err
}

type fakePublisher struct {
	docs [][]byte
	err  error
}

func (f *fakePublisher) Publish(_ context.Context, doc []byte) error {
	if f.err != nil {
		return f.err
	}
	f.docs = append(f.docs, doc)
	return nil
}

const cryptoOutput = "```json\n" + `{
  "date": "January 15, 2026",
  "btc_price": "$48,000.00",
  "eth_price": "$2,900.00",
  "macro": {"fed": "No recent data"},
  "regulatory": {"etf_flows": "IBIT -$200M"},
  "whales": {},
  "sentiment": {},
  "technicals": {"btc_price": "$48,000.00", "eth_price": "$2,900.00"},
  "bias": "BEARISH",
  "bias_color": "#00FF00",
  "summary": "Below $48k opens $45k",
  "updated": "00:00 UTC"
}` + "\n```"

var fixedNow = time.Date(2026, 1, 15, 14, 5, 0, 0, time.UTC)

func newTestEngine(prices *fakePrices, gen *fakeLLM, pub *fakePublisher) *Engine {
	return New(Deps{
		Variant: variant.Crypto,
		Collector: &fakeCollector{items: []model.EvidenceItem{
			{Query: "q", Title: "ETF outflows", Snippet: "IBIT -$200M", URL: "https://x"},
		}},
		Prices:       prices,
		PriceTimeout: time.Second,
		LLM:          gen,
		Publisher:    pub,
		Now:          func() time.Time { return fixedNow },
	})
}

func decode(t *testing.T, doc []byte) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(doc, &m))
	return m
}

func TestRun_OverridesWithLivePrices(t *testing.T) {
	gen := &fakeLLM{out: cryptoOutput}
	pub := &fakePublisher{}
	e := newTestEngine(&fakePrices{snap: model.PriceSnapshot{model.AssetBTC: 50000, model.AssetETH: 3000}}, gen, pub)

	res, err := e.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	assert.True(t, res.Published)
	assert.True(t, res.LivePrices)
	assert.NotEmpty(t, res.RunID)
	require.Len(t, pub.docs, 1)

	doc := decode(t, pub.docs[0])
	assert.Equal(t, "$50,000.00", doc["btc_price"])
	assert.Equal(t, "$3,000.00", doc["eth_price"])
	assert.Equal(t, "$50,000.00", doc["technicals"].(map[string]any)["btc_price"])
	assert.Equal(t, "14:05 UTC", doc["updated"])
	assert.Equal(t, "BEARISH", doc["bias"])
	assert.Equal(t, "#FF0000", doc["bias_color"])

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "LIVE PRICES: BTC = $50,000.00, ETH = $3,000.00")
	assert.Contains(t, gen.prompts[0], "IBIT -$200M")
}

func TestRun_PriceFailureFallsBackToModelValues(t *testing.T) {
	gen := &fakeLLM{out: cryptoOutput}
	pub := &fakePublisher{}
	e := newTestEngine(&fakePrices{err: errors.New("network down")}, gen, pub)

	res, err := e.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	assert.False(t, res.LivePrices)

	doc := decode(t, pub.docs[0])
	assert.Equal(t, "$48,000.00", doc["btc_price"])
	assert.Equal(t, "$2,900.00", doc["eth_price"])
	assert.NotContains(t, gen.prompts[0], "LIVE PRICES")
}

func TestRun_MalformedOutputNeverPublishes(t *testing.T) {
	pub := &fakePublisher{}
	e := newTestEngine(&fakePrices{err: errors.New("x")}, &fakeLLM{out: "I think BTC goes up"}, pub)

	_, err := e.Run(context.Background(), RunOptions{})
	assert.ErrorIs(t, err, normalize.ErrMalformedReport)
	assert.Empty(t, pub.docs)
}

func TestRun_IncompleteOutputNeverPublishes(t *testing.T) {
	for name, out := range map[string]string{
		"bias only":  `{"bias":"WAIT"}`,
		"null price": `{"bias":"WAIT","btc_price":null,"summary":null}`,
	} {
		t.Run(name, func(t *testing.T) {
			pub := &fakePublisher{}
			e := newTestEngine(&fakePrices{snap: model.PriceSnapshot{model.AssetBTC: 50000, model.AssetETH: 3000}}, &fakeLLM{out: out}, pub)

			res, err := e.Run(context.Background(), RunOptions{})
			assert.ErrorIs(t, err, normalize.ErrMalformedReport)
			assert.Nil(t, res)
			assert.Empty(t, pub.docs)
		})
	}
}

func TestRun_InferenceExhaustedNeverPublishes(t *testing.T) {
	pub := &fakePublisher{}
	gen := &fakeLLM{err: errors.New("429 quota")}
	client := llm.NewClient(gen, llm.RetryPolicy{
		MaxAttempts: 3,
		Sleep:       func(context.Context, time.Duration) error { return nil },
	}, 0)

	e := New(Deps{
		Variant:   variant.Crypto,
		Collector: &fakeCollector{items: []model.EvidenceItem{{Query: "q"}}},
		Prices:    &fakePrices{err: errors.New("x")},
		LLM:       client,
		Publisher: pub,
	})

	_, err := e.Run(context.Background(), RunOptions{})
	assert.ErrorContains(t, err, "429 quota")
	assert.Len(t, gen.prompts, 3)
	assert.Empty(t, pub.docs)
}

func TestRun_SearchUnavailableIsFatal(t *testing.T) {
	pub := &fakePublisher{}
	gen := &fakeLLM{out: cryptoOutput}
	e := New(Deps{
		Variant:   variant.Crypto,
		Collector: &fakeCollector{err: evidence.ErrNoEvidence},
		Prices:    &fakePrices{snap: model.PriceSnapshot{model.AssetBTC: 1, model.AssetETH: 1}},
		LLM:       gen,
		Publisher: pub,
	})

	_, err := e.Run(context.Background(), RunOptions{})
	assert.ErrorIs(t, err, evidence.ErrNoEvidence)
	assert.Empty(t, gen.prompts)
	assert.Empty(t, pub.docs)
}

func TestRun_PublishFailure(t *testing.T) {
	pub := &fakePublisher{err: errors.New("gist api error (status 401)")}
	e := newTestEngine(&fakePrices{err: errors.New("x")}, &fakeLLM{out: cryptoOutput}, pub)

	_, err := e.Run(context.Background(), RunOptions{})
	assert.ErrorContains(t, err, "publish failed")
}

func TestRun_DryRun(t *testing.T) {
	var out bytes.Buffer
	e := newTestEngine(&fakePrices{err: errors.New("x")}, &fakeLLM{out: cryptoOutput}, nil)

	res, err := e.Run(context.Background(), RunOptions{DryRun: true, Out: &out})
	require.NoError(t, err)
	assert.False(t, res.Published)
	assert.Equal(t, string(res.Document)+"\n", out.String())
	assert.True(t, strings.HasPrefix(out.String(), "{\n  \"date\": "))
}

func TestRun_PartialSearchFailure(t *testing.T) {
	s := search.SearcherFunc(func(_ context.Context, req *search.Request) (*search.Response, error) {
		if strings.HasPrefix(req.Query, "SEC") {
			return nil, errors.New("rate limited")
		}
		return &search.Response{Results: []search.Result{{Title: "hit for " + req.Query, Content: "c", URL: "u"}}}, nil
	})
	gen := &fakeLLM{out: cryptoOutput}
	e := New(Deps{
		Variant:   variant.Crypto,
		Collector: evidence.NewCollector(s, evidence.Options{}),
		Prices:    &fakePrices{err: errors.New("x")},
		LLM:       gen,
		Publisher: &fakePublisher{},
	})

	_, err := e.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	assert.Contains(t, gen.prompts[0], "hit for crypto regulation news today")
	assert.NotContains(t, gen.prompts[0], "hit for SEC crypto lawsuit news today")
}

func TestPrompt(t *testing.T) {
	gen := &fakeLLM{out: cryptoOutput}
	e := newTestEngine(&fakePrices{snap: model.PriceSnapshot{model.AssetBTC: 1, model.AssetETH: 2}}, gen, nil)

	text, err := e.Prompt(context.Background())
	require.NoError(t, err)
	assert.Contains(t, text, "Today's Date: January 15, 2026")
	assert.Empty(t, gen.prompts)
}
