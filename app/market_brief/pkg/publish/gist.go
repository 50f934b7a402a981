package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/iWorld-y/market_brief/app/market_brief/pkg/config"
)

// Gist 覆盖 GitHub Gist 中的一个文件
type Gist struct {
	baseURL  string
	token    string
	id       string
	filename string
	client   *http.Client
}

// NewGist 创建 Gist 发布目标
func NewGist(cfg config.GistConfig) *Gist {
	base := cfg.BaseURL
	if base == "" {
		base = "https://api.github.com"
	}
	filename := cfg.Filename
	if filename == "" {
		filename = "crypto_data.json"
	}
	return &Gist{
		baseURL:  strings.TrimSuffix(base, "/"),
		token:    cfg.Token,
		id:       cfg.ID,
		filename: filename,
		client:   http.DefaultClient,
	}
}

type gistFile struct {
	Content   string `json:"content"`
	Truncated bool   `json:"truncated,omitempty"`
	RawURL    string `json:"raw_url,omitempty"`
}

type gistBody struct {
	Files map[string]gistFile `json:"files"`
}

// Publish 用 doc 替换文件的全部内容
func (g *Gist) Publish(ctx context.Context, doc []byte) error {
	payload, err := json.Marshal(gistBody{Files: map[string]gistFile{g.filename: {Content: string(doc)}}})
	if err != nil {
		return fmt.Errorf("marshal gist payload: %w", err)
	}

	req, err := g.newRequest(ctx, http.MethodPatch, g.gistURL(), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("gist request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("gist api error (status %d): %s", res.StatusCode, string(body))
	}
	return nil
}

// Load 读取文件当前内容
func (g *Gist) Load(ctx context.Context) ([]byte, error) {
	req, err := g.newRequest(ctx, http.MethodGet, g.gistURL(), nil)
	if err != nil {
		return nil, err
	}
	res, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gist request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("gist api error (status %d): %s", res.StatusCode, string(body))
	}

	var body gistBody
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode gist failed: %w", err)
	}
	f, ok := body.Files[g.filename]
	if !ok || (f.Content == "" && !f.Truncated) {
		return nil, ErrNotFound
	}
	if f.Truncated && f.RawURL != "" {
		return g.loadRaw(ctx, f.RawURL)
	}
	return []byte(f.Content), nil
}

// loadRaw 大文件在 API 响应中被截断，需要从 raw_url 读取
func (g *Gist) loadRaw(ctx context.Context, url string) ([]byte, error) {
	req, err := g.newRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	res, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gist raw request failed: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gist raw error (status %d)", res.StatusCode)
	}
	return io.ReadAll(res.Body)
}

func (g *Gist) Close() error { return nil }

func (g *Gist) gistURL() string {
	return g.baseURL + "/gists/" + g.id
}

func (g *Gist) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if g.token != "" {
		req.Header.Set("Authorization", "token "+g.token)
	}
	return req, nil
}
