package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const defaultOperator = "eq"

// FilterSpec 报表元数据中记录的单个可用筛选字段
type FilterSpec struct {
	Table           string   `json:"table"`
	Column          string   `json:"column"`
	AvailableValues []string `json:"available_values,omitempty"`
}

// Filter 完整写法，对应 {"table","column","value","operator"}
type Filter struct {
	Table    string `json:"table"`
	Column   string `json:"column"`
	Value    any    `json:"value"`
	Operator string `json:"operator"`
}

// ParseFilterMetadata 解析报表的 available_filters 字段
// 元数据为空或无法解析时返回空 map
func ParseFilterMetadata(raw []byte) map[string]FilterSpec {
	specs := make(map[string]FilterSpec)
	if len(raw) == 0 {
		return specs
	}

	var meta map[string]struct {
		Table  string `json:"table"`
		Column string `json:"column"`
		Values []any  `json:"values"`
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return specs
	}

	for name, m := range meta {
		values := make([]string, 0, len(m.Values))
		for _, v := range m.Values {
			values = append(values, fmt.Sprint(v))
		}
		specs[name] = FilterSpec{
			Table:           m.Table,
			Column:          m.Column,
			AvailableValues: values,
		}
	}
	return specs
}

// BuildFilterExpression 生成单个 Power BI URL 筛选表达式，如 Tabla/Columna eq 'Valor'
func BuildFilterExpression(table, column string, value any, operator string) string {
	if operator == "" {
		operator = defaultOperator
	}
	target := table + "/" + column

	if list, ok := asList(value); ok && strings.EqualFold(operator, "in") {
		formatted := make([]string, 0, len(list))
		for _, v := range list {
			formatted = append(formatted, formatValue(v))
		}
		return fmt.Sprintf("%s %s (%s)", target, operator, strings.Join(formatted, ", "))
	}
	return fmt.Sprintf("%s %s %s", target, operator, formatValue(value))
}

// BuildFilterURL 把筛选条件拼接到嵌入地址
// 简写 {"Mes":"Marzo"} 优先用元数据定位表和列，找不到时表名列名都取键名
func BuildFilterURL(embedURL string, filters map[string]any, metadata map[string]FilterSpec) string {
	if len(filters) == 0 {
		return embedURL
	}

	names := make([]string, 0, len(filters))
	for name := range filters {
		names = append(names, name)
	}
	sort.Strings(names)

	expressions := make([]string, 0, len(names))
	for _, name := range names {
		f := resolveFilter(name, filters[name], metadata)
		expressions = append(expressions, BuildFilterExpression(f.Table, f.Column, f.Value, f.Operator))
	}
	combined := strings.Join(expressions, " and ")

	if strings.Contains(embedURL, "?") {
		return embedURL + "&filter=" + combined
	}
	return embedURL + "?filter=" + combined
}

func resolveFilter(name string, raw any, metadata map[string]FilterSpec) Filter {
	f := Filter{Table: name, Column: name, Operator: defaultOperator}
	if spec, ok := metadata[name]; ok {
		if spec.Table != "" {
			f.Table = spec.Table
		}
		if spec.Column != "" {
			f.Column = spec.Column
		}
	}

	complexFilter, ok := raw.(map[string]any)
	if !ok {
		f.Value = raw
		if _, isList := asList(raw); isList {
			f.Operator = "in"
		}
		return f
	}

	if v, ok := complexFilter["table"].(string); ok && v != "" {
		f.Table = v
	}
	if v, ok := complexFilter["column"].(string); ok && v != "" {
		f.Column = v
	}
	if v, ok := complexFilter["operator"].(string); ok && v != "" {
		f.Operator = v
	}
	f.Value = complexFilter["value"]
	return f
}

func asList(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []string:
		list := make([]any, len(v))
		for i, s := range v {
			list[i] = s
		}
		return list, true
	}
	return nil, false
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'"
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return "'" + strings.ReplaceAll(fmt.Sprint(v), "'", "''") + "'"
	}
}
