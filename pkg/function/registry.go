package function

import (
	"errors"
	"sort"
	"sync"

	"github.com/paneq/awesome-openclaw-slack/pkg/observability"
)

// 错误定义
var (
	ErrNilFunction       = errors.New("function cannot be nil")
	ErrEmptyFunctionName = errors.New("function name cannot be empty")
	ErrFunctionNotFound  = errors.New("function not found")
)

// Registry 工具注册表，并发安全
type Registry struct {
	mu        sync.RWMutex
	functions map[string]Function
}

// NewRegistry 创建新的注册表
func NewRegistry() *Registry {
	return &Registry{
		functions: make(map[string]Function),
	}
}

// Register 注册一个 Function，同名覆盖
func (r *Registry) Register(fn Function) error {
	if fn == nil {
		return ErrNilFunction
	}
	name := fn.Name()
	if name == "" {
		return ErrEmptyFunctionName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.functions[name] = fn
	observability.Info("Function registered", "name", name)
	return nil
}

// RegisterAll 批量注册
func (r *Registry) RegisterAll(fns ...Function) error {
	for _, fn := range fns {
		if err := r.Register(fn); err != nil {
			return err
		}
	}
	return nil
}

// Get 获取指定名称的 Function
func (r *Registry) Get(name string) (Function, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.functions[name]
	return fn, ok
}

// Has 检查是否存在指定名称的 Function
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// List 按名称排序列出所有已注册的 Function 名称
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Info 返回单个 Function 的详细信息
func (r *Registry) Info(name string) (FunctionInfo, bool) {
	fn, ok := r.Get(name)
	if !ok {
		return FunctionInfo{}, false
	}
	return describe(fn), true
}

// ListInfo 按名称排序列出所有 Function 的详细信息
func (r *Registry) ListInfo() []FunctionInfo {
	names := r.List()
	infos := make([]FunctionInfo, 0, len(names))
	for _, name := range names {
		if info, ok := r.Info(name); ok {
			infos = append(infos, info)
		}
	}
	return infos
}

// Unregister 注销一个 Function
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.functions[name]; !ok {
		return false
	}
	delete(r.functions, name)
	observability.Info("Function unregistered", "name", name)
	return true
}

// Count 返回已注册的 Function 数量
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.functions)
}

func describe(fn Function) FunctionInfo {
	return FunctionInfo{
		Name:        fn.Name(),
		Description: fn.Description(),
		Parameters:  ExtractParamInfo(fn),
	}
}
