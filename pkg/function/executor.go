package function

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/paneq/awesome-openclaw-slack/pkg/observability"
)

// DefaultTimeout 默认执行超时
const DefaultTimeout = 30 * time.Second

// Executor 工具执行器
// 负责参数绑定、超时控制和 panic 恢复
type Executor struct {
	registry *Registry
	timeout  time.Duration
}

// NewExecutor 创建执行器，timeout 为 0 时使用 DefaultTimeout
func NewExecutor(registry *Registry, timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Executor{
		registry: registry,
		timeout:  timeout,
	}
}

// ExecuteRequest 执行请求
type ExecuteRequest struct {
	FunctionName string
	Params       map[string]any // 宿主传入的原始参数（JSON 对象）
}

// ExecuteResponse 执行响应
type ExecuteResponse struct {
	Result   Result
	Duration time.Duration
	Error    error
}

// Execute 执行工具
func (e *Executor) Execute(ctx context.Context, req ExecuteRequest) ExecuteResponse {
	start := time.Now()

	fn, ok := e.registry.Get(req.FunctionName)
	if !ok {
		return ExecuteResponse{
			Error:    fmt.Errorf("%w: %s", ErrFunctionNotFound, req.FunctionName),
			Duration: time.Since(start),
		}
	}

	params, err := bindParams(fn, req.Params)
	if err != nil {
		err = fmt.Errorf("failed to parse params: %w", err)
		if renderer, ok := fn.(FailureRenderer); ok {
			observability.FunctionCallLog(ctx, req.FunctionName, "rejected", time.Since(start).Milliseconds())
			return ExecuteResponse{
				Result:   renderer.RenderFailure(err),
				Duration: time.Since(start),
			}
		}
		return ExecuteResponse{
			Error:    err,
			Duration: time.Since(start),
		}
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanFunctionExecute,
		attribute.String(observability.AttrFunctionName, fn.Name()))

	execCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	result, execErr := e.executeWithRecover(execCtx, fn, params)
	duration := time.Since(start)
	observability.EndSpan(span, execErr)

	status := "success"
	if execErr != nil {
		status = "error"
	}
	observability.FunctionCallLog(ctx, req.FunctionName, status, duration.Milliseconds())

	if renderer, ok := fn.(FailureRenderer); ok && execErr != nil {
		return ExecuteResponse{
			Result:   renderer.RenderFailure(execErr),
			Duration: duration,
		}
	}

	return ExecuteResponse{
		Result:   result,
		Duration: duration,
		Error:    execErr,
	}
}

// bindParams 按 ParamsType 创建参数实例并填充
func bindParams(fn Function, raw map[string]any) (any, error) {
	paramType := fn.ParamsType()
	if paramType == nil {
		return nil, nil
	}

	var paramValue reflect.Value
	if paramType.Kind() == reflect.Ptr {
		paramValue = reflect.New(paramType.Elem())
	} else {
		paramValue = reflect.New(paramType)
	}

	if err := ParseParams(raw, paramValue.Interface()); err != nil {
		return nil, err
	}

	// 原始类型不是指针时返回值
	if paramType.Kind() != reflect.Ptr {
		return paramValue.Elem().Interface(), nil
	}
	return paramValue.Interface(), nil
}

// executeWithRecover 执行并恢复 panic，超时后立即返回
func (e *Executor) executeWithRecover(ctx context.Context, fn Function, params any) (Result, error) {
	type outcome struct {
		result Result
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				observability.Error("Function panicked",
					"function", fn.Name(),
					"panic", r,
				)
				done <- outcome{err: fmt.Errorf("function panicked: %v", r)}
			}
		}()
		result, err := fn.Execute(ctx, params)
		done <- outcome{result: result, err: err}
	}()

	select {
	case o := <-done:
		return o.result, o.err
	case <-ctx.Done():
		return Result{}, fmt.Errorf("function execution timeout: %w", ctx.Err())
	}
}
