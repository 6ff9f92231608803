// Package server 提供 Agent 宿主调用的 HTTP 接口
package server

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/paneq/awesome-openclaw-slack/pkg/app"
	"github.com/paneq/awesome-openclaw-slack/pkg/function"
	"github.com/paneq/awesome-openclaw-slack/pkg/history"
	"github.com/paneq/awesome-openclaw-slack/pkg/observability"
)

// Server HTTP 服务器
type Server struct {
	app    *app.App
	engine *gin.Engine
	config *app.ServerConfig
}

// NewServer 创建 HTTP 服务器，app 必须已初始化
func NewServer(a *app.App) *Server {
	config := a.Config().Server

	switch config.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(LoggerMiddleware())

	s := &Server{
		app:    a,
		engine: engine,
		config: &config,
	}
	s.setupRoutes()
	return s
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	s.engine.GET("/health", s.healthCheck)

	metrics := s.app.Config().Metrics
	if gatherer := s.app.MetricsGatherer(); metrics.Enabled && gatherer != nil {
		s.engine.GET(metrics.Path, gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	v1 := s.engine.Group("/api/v1")
	{
		v1.GET("/functions", s.listFunctions)
		v1.GET("/functions/:name", s.getFunction)
		v1.POST("/functions/:name/call", s.callFunction)
		v1.GET("/scheduled", s.listScheduled)
	}
}

// Run 启动服务器
func (s *Server) Run() error {
	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	observability.Info("Starting HTTP server", "address", addr)
	return s.engine.Run(addr)
}

// Handler 返回 http.Handler（用于测试和自定义监听）
func (s *Server) Handler() http.Handler {
	return s.engine
}

// 健康检查
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	})
}

// 列出所有工具
func (s *Server) listFunctions(c *gin.Context) {
	functions := s.app.Registry().ListInfo()
	c.JSON(http.StatusOK, gin.H{
		"functions": functions,
		"count":     len(functions),
	})
}

// 获取单个工具
func (s *Server) getFunction(c *gin.Context) {
	name := c.Param("name")

	info, ok := s.app.Registry().Info(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Function not found: " + name,
		})
		return
	}
	c.JSON(http.StatusOK, info)
}

// 调用工具，请求体为参数 JSON 对象
func (s *Server) callFunction(c *gin.Context) {
	name := c.Param("name")

	params := map[string]any{}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&params); err != nil {
			err = fmt.Errorf("invalid request: %w", err)
			// 自行渲染失败结果的工具始终返回结果结构
			if fn, ok := s.app.Registry().Get(name); ok {
				if renderer, ok := fn.(function.FailureRenderer); ok {
					s.writeResult(c, name, renderer.RenderFailure(err), 0)
					return
				}
			}
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
			})
			return
		}
	}

	resp := s.app.Executor().Execute(c.Request.Context(), function.ExecuteRequest{
		FunctionName: name,
		Params:       params,
	})

	if resp.Error != nil {
		status := http.StatusInternalServerError
		var paramErr *function.ParamError
		switch {
		case errors.Is(resp.Error, function.ErrFunctionNotFound):
			status = http.StatusNotFound
		case errors.As(resp.Error, &paramErr):
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{
			"error":       resp.Error.Error(),
			"duration_ms": resp.Duration.Milliseconds(),
		})
		return
	}

	s.writeResult(c, name, resp.Result, resp.Duration)
}

func (s *Server) writeResult(c *gin.Context, name string, result function.Result, duration time.Duration) {
	c.JSON(http.StatusOK, gin.H{
		"function":    name,
		"message":     result.Message,
		"data":        result.Data,
		"duration_ms": duration.Milliseconds(),
	})
}

// 列出历史记录
func (s *Server) listScheduled(c *gin.Context) {
	repo := s.app.History()
	if repo == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "history is disabled",
		})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 {
		limit = 20
	}

	status, err := history.ParseStatus(c.Query("status"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	records, err := repo.List(c.Request.Context(), status, limit, offset)
	if err != nil {
		observability.Error("List history failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"count":   len(records),
	})
}

// LoggerMiddleware 日志中间件
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		observability.Info("HTTP request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}
