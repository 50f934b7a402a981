package engine

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/iWorld-y/market_brief/app/market_brief/pkg/evidence"
	"github.com/iWorld-y/market_brief/app/market_brief/pkg/logger"
	"github.com/iWorld-y/market_brief/app/market_brief/pkg/model"
	"github.com/iWorld-y/market_brief/app/market_brief/pkg/normalize"
	"github.com/iWorld-y/market_brief/app/market_brief/pkg/price"
	"github.com/iWorld-y/market_brief/app/market_brief/pkg/prompt"
	"github.com/iWorld-y/market_brief/app/market_brief/pkg/publish"
	"github.com/iWorld-y/market_brief/app/market_brief/pkg/variant"
)

// Collector 证据收集
type Collector interface {
	Collect(ctx context.Context, queries []string) ([]model.EvidenceItem, error)
}

// Generator 带重试的推理调用
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Deps 引擎依赖
type Deps struct {
	Variant      variant.Variant
	Collector    Collector
	Prices       price.Fetcher
	PriceTimeout time.Duration
	LLM          Generator
	// Publisher 为 nil 时只能 DryRun
	Publisher publish.Publisher
	Location  *time.Location
	// Now 为 nil 时使用 time.Now
	Now func() time.Time
}

// Engine 一次简报生成的完整流水线：
// 收集证据 ‖ 获取价格 -> 构建 Prompt -> 调用模型 -> 解析与覆盖 -> 发布
type Engine struct {
	d Deps
}

// New 创建引擎
func New(d Deps) *Engine {
	if d.Location == nil {
		d.Location = time.UTC
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Engine{d: d}
}

// RunOptions 运行选项
type RunOptions struct {
	// DryRun 为 true 时把报告写到 Out 而不是发布
	DryRun bool
	Out    io.Writer
}

// Result 一次运行的产物
type Result struct {
	RunID    string
	Report   model.Report
	Document []byte
	// LivePrices 为 false 表示价格字段保留了模型估价
	LivePrices bool
	Published  bool
}

// inputs 收集阶段的产物
type inputs struct {
	evidence []model.EvidenceItem
	prices   model.PriceSnapshot
}

// Run 执行一次完整流程。任何不可恢复的错误都会中止运行且不发布。
func (e *Engine) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	runID := uuid.NewString()
	log := logger.Log.WithFields(logrus.Fields{"run_id": runID, "variant": e.d.Variant.Name})
	log.Infof("开始生成简报")

	in, err := e.gather(ctx, log)
	if err != nil {
		return nil, err
	}

	text, err := e.buildPrompt(in)
	if err != nil {
		return nil, err
	}
	log.Infof("Prompt 构建完成 (%d 字节)", len(text))

	raw, err := e.d.LLM.Generate(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	report := e.d.Variant.NewReport()
	if err := normalize.Parse(raw, report); err != nil {
		return nil, err
	}
	normalize.Apply(report, in.prices, e.d.Now(), e.d.Location)
	log.Infof("报告解析完成: bias=%s", report.Stance())

	doc, err := publish.Marshal(report)
	if err != nil {
		return nil, err
	}

	res := &Result{RunID: runID, Report: report, Document: doc, LivePrices: in.prices != nil}
	if opts.DryRun {
		if opts.Out != nil {
			if _, err := fmt.Fprintln(opts.Out, string(doc)); err != nil {
				return nil, err
			}
		}
		log.Infof("dry run，跳过发布")
		return res, nil
	}

	if e.d.Publisher == nil {
		return nil, fmt.Errorf("no publisher configured")
	}
	if err := e.d.Publisher.Publish(ctx, doc); err != nil {
		return nil, fmt.Errorf("publish failed: %w", err)
	}
	res.Published = true
	log.Infof("发布完成")
	return res, nil
}

// Prompt 只执行收集与构建，返回将要发送给模型的文本
func (e *Engine) Prompt(ctx context.Context) (string, error) {
	in, err := e.gather(ctx, logger.Log.WithField("variant", e.d.Variant.Name))
	if err != nil {
		return "", err
	}
	return e.buildPrompt(in)
}

// gather 证据收集与价格获取互不依赖，并发执行
func (e *Engine) gather(ctx context.Context, log *logrus.Entry) (inputs, error) {
	var in inputs
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infof("获取实时价格...")
		in.prices = price.Fetch(gctx, e.d.Prices, e.d.Variant.Assets, e.d.PriceTimeout)
		if in.prices != nil {
			for _, a := range e.d.Variant.Assets {
				log.Infof("%s: %s", a.Label(), model.FormatUSD(in.prices[a]))
			}
		}
		return nil
	})

	g.Go(func() error {
		log.Infof("收集市场数据 (%d 个查询)...", len(e.d.Variant.Queries))
		items, err := e.d.Collector.Collect(gctx, e.d.Variant.Queries)
		if err != nil {
			return fmt.Errorf("collect evidence: %w", err)
		}
		in.evidence = items
		return nil
	})

	if err := g.Wait(); err != nil {
		return inputs{}, err
	}
	return in, nil
}

func (e *Engine) buildPrompt(in inputs) (string, error) {
	return prompt.Build(prompt.Input{
		Variant:  e.d.Variant,
		Date:     e.d.Now(),
		Prices:   in.prices,
		Evidence: evidence.Blob(in.evidence),
	})
}
