package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Schema 工具参数的 JSON Schema 描述，直接提供给模型
type Schema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

type Property struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`

	// 枚举校验失败时的提示前缀
	invalid string
}

func object(props map[string]Property, required ...string) Schema {
	if props == nil {
		props = map[string]Property{}
	}
	return Schema{Type: "object", Properties: props, Required: required}
}

func str(desc string) Property {
	return Property{Type: "string", Description: desc}
}

func integer(desc string) Property {
	return Property{Type: "integer", Description: desc}
}

func enum(desc string, values []string, invalid string) Property {
	return Property{Type: "string", Description: desc, Enum: values, invalid: invalid}
}

// Map 转为通用 map，供 LLM SDK 与 MCP 使用
func (s Schema) Map() map[string]any {
	data, _ := json.Marshal(s)
	var m map[string]any
	_ = json.Unmarshal(data, &m)
	return m
}

func (s Schema) Raw() json.RawMessage {
	data, _ := json.Marshal(s)
	return data
}

// normalize 校验模型给出的参数并做宽松的类型转换，如 "12" -> 12
func (s Schema) normalize(raw json.RawMessage) (json.RawMessage, error) {
	args := map[string]any{}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		if err := dec.Decode(&args); err != nil {
			return nil, fmt.Errorf("Argumentos inválidos: se esperaba un objeto JSON (%v)", err)
		}
	}

	for key, value := range args {
		if value == nil {
			delete(args, key)
		}
	}

	for _, name := range s.Required {
		if _, ok := args[name]; !ok {
			return nil, fmt.Errorf("El campo \"%s\" es requerido", name)
		}
	}

	for name, value := range args {
		prop, ok := s.Properties[name]
		if !ok {
			// 未声明的参数直接忽略
			delete(args, name)
			continue
		}
		converted, err := coerce(prop.Type, value)
		if err != nil {
			return nil, fmt.Errorf("El campo \"%s\" debe ser de tipo %s", name, prop.Type)
		}
		if len(prop.Enum) > 0 {
			if err := checkEnum(name, prop, converted); err != nil {
				return nil, err
			}
		}
		args[name] = converted
	}

	return json.Marshal(args)
}

func coerce(typ string, value any) (any, error) {
	switch typ {
	case "string":
		switch v := value.(type) {
		case string:
			return v, nil
		case json.Number:
			return v.String(), nil
		}
	case "integer":
		switch v := value.(type) {
		case json.Number:
			if n, err := v.Int64(); err == nil {
				return n, nil
			}
			if f, err := v.Float64(); err == nil && f == math.Trunc(f) {
				return int64(f), nil
			}
		case string:
			if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
				return n, nil
			}
		}
	case "number":
		switch v := value.(type) {
		case json.Number:
			return v.Float64()
		case string:
			return strconv.ParseFloat(strings.TrimSpace(v), 64)
		}
	case "boolean":
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			return strconv.ParseBool(v)
		}
	case "object":
		if v, ok := value.(map[string]any); ok {
			return v, nil
		}
	case "array":
		if v, ok := value.([]any); ok {
			return v, nil
		}
	default:
		return value, nil
	}
	return nil, fmt.Errorf("unexpected %T for %s", value, typ)
}

func checkEnum(name string, prop Property, value any) error {
	s, _ := value.(string)
	for _, allowed := range prop.Enum {
		if s == allowed {
			return nil
		}
	}
	prefix := prop.invalid
	if prefix == "" {
		prefix = fmt.Sprintf("Valor inválido para \"%s\". Valores permitidos", name)
	}
	return fmt.Errorf("%s: %s", prefix, strings.Join(prop.Enum, ", "))
}
