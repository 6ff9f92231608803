// Package function 定义暴露给 Agent 宿主的工具（Function）接口、注册表和执行器
package function

import (
	"context"
	"reflect"
)

// Function 是所有可调用工具的基础接口
// Agent 通过 Name() 识别工具，通过 Description() 理解用途
type Function interface {
	// Name 返回工具的唯一标识符
	// 命名规范：小写字母、数字、下划线，如 "slack_schedule_message"
	Name() string

	// Description 返回工具描述
	Description() string

	// Execute 执行工具
	// params 的具体类型由 ParamsType() 决定
	Execute(ctx context.Context, params any) (Result, error)

	// ParamsType 返回参数的反射类型，返回 nil 表示不需要参数
	ParamsType() reflect.Type
}

// FailureRenderer 可选接口
// 实现后，参数绑定失败、执行超时或 panic 由工具自己渲染为结果，执行器不再返回错误
type FailureRenderer interface {
	RenderFailure(err error) Result
}

// Result 工具执行结果
type Result struct {
	// Data 结构化数据，原样以 JSON 返回给宿主
	Data any `json:"data,omitempty"`

	// Message 简短的文本说明
	Message string `json:"message,omitempty"`
}

// FunctionInfo 工具元信息，用于 API 返回
type FunctionInfo struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []ParamInfo `json:"parameters,omitempty"`
}

// ParamInfo 参数元信息
type ParamInfo struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
	Default     string `json:"default,omitempty"`
}
