package prompt

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strconv"
	"strings"

	"github.com/iWorld-y/market_brief/app/market_brief/pkg/model"
)

const indentUnit = "    "

// Schema 根据报告结构体的 tag 渲染给模型看的目标 JSON 形状。
//
// 支持的 tag：
//   - json: 字段名
//   - desc: 字段说明，作为占位值输出；列表元素中的 {n} 替换为序号
//   - schema: date / price / bias / bias_color，这些字段的占位值由渲染器生成
//   - asset: price 字段对应的资产
//   - items: 列表字段展示的占位条目数
//   - required: "true" 表示顶层字段必须出现且不能为 null 或空串
func Schema(report any, date string, prices model.PriceSnapshot) string {
	w := &schemaWriter{date: date, prices: prices}
	w.object(structType(report), 0)
	return w.sb.String()
}

// Fields 返回报告结构体全部叶子字段的点分路径，列表字段视为叶子
func Fields(report any) []string {
	var out []string
	walk(structType(report), "", &out)
	return out
}

// Required 返回标记为 required 的顶层字段名，按声明顺序
func Required(report any) []string {
	var out []string
	for _, f := range visibleFields(structType(report)) {
		if f.Tag.Get("required") == "true" {
			out = append(out, jsonName(f))
		}
	}
	return out
}

func walk(t reflect.Type, prefix string, out *[]string) {
	for _, f := range visibleFields(t) {
		path := prefix + jsonName(f)
		if f.Type.Kind() == reflect.Struct {
			walk(f.Type, path+".", out)
			continue
		}
		*out = append(*out, path)
	}
}

type schemaWriter struct {
	sb     strings.Builder
	date   string
	prices model.PriceSnapshot
}

func (w *schemaWriter) object(t reflect.Type, depth int) {
	fields := visibleFields(t)
	w.sb.WriteString("{\n")
	for i, f := range fields {
		w.indent(depth + 1)
		w.sb.WriteString(quote(jsonName(f)))
		w.sb.WriteString(": ")
		w.value(f, depth+1)
		if i < len(fields)-1 {
			w.sb.WriteByte(',')
		}
		w.sb.WriteByte('\n')
	}
	w.indent(depth)
	w.sb.WriteByte('}')
}

func (w *schemaWriter) value(f reflect.StructField, depth int) {
	desc := f.Tag.Get("desc")

	switch f.Tag.Get("schema") {
	case "date":
		w.sb.WriteString(quote(w.date))
		return
	case "price":
		if v, ok := w.prices[model.Asset(f.Tag.Get("asset"))]; ok {
			w.sb.WriteString(quote(model.FormatUSD(v)))
			return
		}
		w.sb.WriteString(quote(desc))
		return
	case "bias":
		opts := make([]string, 0, len(model.Biases))
		for _, b := range model.Biases {
			opts = append(opts, quote(string(b)))
		}
		w.sb.WriteString(strings.Join(opts, " | "))
		return
	case "bias_color":
		opts := make([]string, 0, len(model.Biases))
		for _, b := range model.Biases {
			opts = append(opts, quote(model.BiasColor(b))+" ("+strings.ToLower(string(b))+")")
		}
		w.sb.WriteString(strings.Join(opts, " | "))
		return
	}

	switch f.Type.Kind() {
	case reflect.Struct:
		w.object(f.Type, depth)
	case reflect.Slice:
		w.list(f, depth)
	default:
		w.sb.WriteString(quote(desc))
	}
}

// list 每个占位条目单独一行
func (w *schemaWriter) list(f reflect.StructField, depth int) {
	n, err := strconv.Atoi(f.Tag.Get("items"))
	if err != nil || n <= 0 {
		n = 1
	}
	elem := f.Type.Elem()

	w.sb.WriteString("[\n")
	for i := 1; i <= n; i++ {
		w.indent(depth + 1)
		if elem.Kind() == reflect.Struct {
			w.inline(elem, i)
		} else {
			w.sb.WriteString(quote(numbered(f.Tag.Get("desc"), i)))
		}
		if i < n {
			w.sb.WriteByte(',')
		}
		w.sb.WriteByte('\n')
	}
	w.indent(depth)
	w.sb.WriteByte(']')
}

func (w *schemaWriter) inline(t reflect.Type, n int) {
	fields := visibleFields(t)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, quote(jsonName(f))+": "+quote(numbered(f.Tag.Get("desc"), n)))
	}
	w.sb.WriteString("{" + strings.Join(parts, ", ") + "}")
}

func (w *schemaWriter) indent(depth int) {
	w.sb.WriteString(strings.Repeat(indentUnit, depth))
}

func numbered(s string, n int) string {
	return strings.ReplaceAll(s, "{n}", strconv.Itoa(n))
}

func structType(v any) reflect.Type {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func visibleFields(t reflect.Type) []reflect.StructField {
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	out := make([]reflect.StructField, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || jsonName(f) == "-" {
			continue
		}
		out = append(out, f)
	}
	return out
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" {
		return f.Name
	}
	return name
}

// quote 输出 JSON 字符串字面量，不转义 < > &
func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}
