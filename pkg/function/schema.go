package function

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/cast"
)

// ExtractParamInfo 通过反射读取参数结构体的字段和 tag
func ExtractParamInfo(fn Function) []ParamInfo {
	paramType := fn.ParamsType()
	if paramType == nil {
		return nil
	}
	if paramType.Kind() == reflect.Ptr {
		paramType = paramType.Elem()
	}
	if paramType.Kind() != reflect.Struct {
		return nil
	}
	return extractStructParams(paramType)
}

// extractStructParams 从结构体类型提取参数信息
func extractStructParams(t reflect.Type) []ParamInfo {
	var params []ParamInfo

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		// 跳过非导出字段
		if field.PkgPath != "" {
			continue
		}

		// 嵌入的结构体递归展开
		if field.Anonymous {
			if field.Type.Kind() == reflect.Struct {
				params = append(params, extractStructParams(field.Type)...)
			}
			continue
		}

		params = append(params, ParamInfo{
			Name:        getFieldName(field),
			Type:        getTypeName(field.Type),
			Description: field.Tag.Get("desc"),
			Required:    isRequired(field),
			Default:     field.Tag.Get("default"),
		})
	}

	return params
}

// getFieldName 优先使用 json tag，否则使用下划线形式的字段名
func getFieldName(field reflect.StructField) string {
	if tag := field.Tag.Get("json"); tag != "" && tag != "-" {
		if name, _, _ := strings.Cut(tag, ","); name != "" {
			return name
		}
	}
	return toSnakeCase(field.Name)
}

// getTypeName 获取类型的可读名称（JSON Schema 风格）
func getTypeName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "array[" + getTypeName(t.Elem()) + "]"
	case reflect.Ptr:
		return getTypeName(t.Elem())
	case reflect.Struct, reflect.Map:
		return "object"
	default:
		return t.String()
	}
}

// isRequired 判断字段是否必填
func isRequired(field reflect.StructField) bool {
	switch field.Tag.Get("required") {
	case "true", "1":
		return true
	}
	return strings.Contains(field.Tag.Get("binding"), "required")
}

// toSnakeCase 驼峰转下划线
func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ParamError 参数绑定错误
type ParamError struct {
	Param string
	Err   error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid parameter %q: %v", e.Param, e.Err)
}

func (e *ParamError) Unwrap() error {
	return e.Err
}

// ErrInvalidTarget ParseParams 的目标不是结构体指针
var ErrInvalidTarget = fmt.Errorf("target must be a non-nil pointer to struct")

// ParseParams 将宿主传入的参数填充到目标结构体
// 缺失的参数使用 default tag；值的类型转换交给 cast
func ParseParams(params map[string]any, target any) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return ErrInvalidTarget
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return ErrInvalidTarget
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)
		if !fieldValue.CanSet() {
			continue
		}

		name := getFieldName(field)
		raw, ok := params[name]
		if !ok || raw == nil {
			def := field.Tag.Get("default")
			if def == "" {
				continue
			}
			raw = def
		}

		if err := setFieldValue(fieldValue, raw); err != nil {
			return &ParamError{Param: name, Err: err}
		}
	}

	return nil
}

// setFieldValue 按字段类型转换并赋值
func setFieldValue(field reflect.Value, raw any) error {
	switch field.Kind() {
	case reflect.String:
		s, err := cast.ToStringE(raw)
		if err != nil {
			return err
		}
		field.SetString(s)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := cast.ToInt64E(raw)
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := cast.ToUint64E(raw)
		if err != nil {
			return err
		}
		field.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := cast.ToFloat64E(raw)
		if err != nil {
			return err
		}
		field.SetFloat(f)
	case reflect.Bool:
		b, err := cast.ToBoolE(raw)
		if err != nil {
			return err
		}
		field.SetBool(b)
	}
	return nil
}
