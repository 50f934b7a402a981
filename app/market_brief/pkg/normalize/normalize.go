// Package normalize 清洗模型原始输出、严格解析，并用权威数据覆盖价格与时间字段
package normalize

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/iWorld-y/market_brief/app/market_brief/pkg/model"
	"github.com/iWorld-y/market_brief/app/market_brief/pkg/prompt"
)

// ErrMalformedReport 模型输出无法解析为目标结构，本次运行不得发布
var ErrMalformedReport = errors.New("malformed report")

// UpdatedLayout updated 字段格式，例如 14:05 UTC
const UpdatedLayout = "15:04 MST"

// StripFences 去掉首尾的 ```json / ``` 标记与空白
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// Parse 把原始文本解析进 report。允许多余字段；语法错误、类型错误、
// 尾随内容、非对象顶层、必填字段缺失/为 null/为空，或 bias 未知都返回 ErrMalformedReport。
func Parse(raw string, report model.Report) error {
	body := StripFences(raw)
	if !strings.HasPrefix(body, "{") {
		return fmt.Errorf("%w: expected a JSON object, got %q", ErrMalformedReport, head(body))
	}

	dec := json.NewDecoder(strings.NewReader(body))
	if err := dec.Decode(report); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedReport, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing content after JSON object", ErrMalformedReport)
	}
	if err := checkRequired(body, report); err != nil {
		return err
	}
	if !report.Stance().Valid() {
		return fmt.Errorf("%w: missing bias", ErrMalformedReport)
	}
	return nil
}

// checkRequired 必填的顶层 key 必须出现且不为 null；字符串值不能是空白
func checkRequired(body string, report model.Report) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &top); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedReport, err)
	}

	for _, key := range prompt.Required(report) {
		v := bytes.TrimSpace(top[key])
		switch {
		case len(v) == 0:
			return fmt.Errorf("%w: missing %s", ErrMalformedReport, key)
		case bytes.Equal(v, []byte("null")):
			return fmt.Errorf("%w: %s is null", ErrMalformedReport, key)
		case v[0] == '"':
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrMalformedReport, key, err)
			}
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("%w: %s is empty", ErrMalformedReport, key)
			}
		}
	}
	return nil
}

// Apply 解析之后的权威覆盖：
// 有快照时覆盖价格字段；updated 改为当前时间；bias_color 与 bias 同步；新闻链接截断。
func Apply(report model.Report, prices model.PriceSnapshot, now time.Time, loc *time.Location) {
	if len(prices) > 0 {
		setPrices(reflect.ValueOf(report), prices)
	}

	if loc == nil {
		loc = time.UTC
	}
	report.SetUpdated(now.In(loc).Format(UpdatedLayout))
	report.SetBiasColor(model.BiasColor(report.Stance()))
	report.TrimNewsLinks(model.MaxNewsLinks)
}

// setPrices 覆盖所有 schema:"price" 字段，资产由同一字段的 asset tag 指定，
// 与 Prompt schema 中的价格占位保持同一来源
func setPrices(v reflect.Value, prices model.PriceSnapshot) {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		fv := v.Field(i)
		if f.Type.Kind() == reflect.Struct {
			setPrices(fv, prices)
			continue
		}
		if f.Tag.Get("schema") != "price" || f.Type.Kind() != reflect.String || !fv.CanSet() {
			continue
		}
		if p, ok := prices[model.Asset(f.Tag.Get("asset"))]; ok {
			fv.SetString(model.FormatUSD(p))
		}
	}
}

// head 截取错误信息中展示的开头部分，不切断 UTF-8 字符
func head(s string) string {
	const n = 40
	if len(s) <= n {
		return s
	}
	i := n
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return s[:i] + "..."
}
