package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/paneq/awesome-openclaw-slack/pkg/app"
	"github.com/paneq/awesome-openclaw-slack/pkg/observability"
	"github.com/paneq/awesome-openclaw-slack/pkg/scheduler"
	"github.com/paneq/awesome-openclaw-slack/pkg/server"
)

const version = "v0.1.0"

// newApp 加载配置并初始化应用
func newApp(opts ...app.Option) (*app.App, error) {
	config, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	a := app.New(append([]app.Option{app.WithConfig(config)}, opts...)...)
	if err := a.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize: %w", err)
	}
	return a, nil
}

// serveCmd 启动 HTTP 服务器
func serveCmd() *cobra.Command {
	var port int
	var host string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []app.Option
			if port != 0 {
				opts = append(opts, app.WithServerPort(port))
			}
			if host != "" {
				opts = append(opts, app.WithServerHost(host))
			}

			a, err := newApp(opts...)
			if err != nil {
				return err
			}

			srv := server.NewServer(a)

			// 优雅关闭
			go func() {
				sigCh := make(chan os.Signal, 1)
				signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
				<-sigCh

				observability.Info("Received shutdown signal")
				_ = a.Shutdown()
				os.Exit(0)
			}()

			return srv.Run()
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Server port (default 8080)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Server host (default 0.0.0.0)")

	return cmd
}

// errNotScheduled 让 CLI 以非零状态退出，失败详情已经输出
var errNotScheduled = errors.New("message was not scheduled")

// scheduleCmd 直接调用 slack_schedule_message 并输出 JSON 结果
func scheduleCmd() *cobra.Command {
	var (
		req scheduler.Request
		in  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Schedule a Slack message once and print the tool response",
		Example: `  openclaw-slack schedule --to channel:C123 --message "Standup in 5" --in 1h
  openclaw-slack schedule --to user:U456 --message "Hi" --post-at 1767225600 --thread 167.1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if in > 0 {
				req.PostAt = time.Now().Add(in).Unix()
			}

			// stdout 只输出 JSON 结果
			a, err := newApp(app.WithLogOutput("stderr"))
			if err != nil {
				return err
			}
			defer a.Shutdown()

			resp := a.ScheduleFunction().Handle(context.Background(), req)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(resp); err != nil {
				return err
			}
			if !resp.OK {
				return errNotScheduled
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&req.To, "to", "", "Recipient (channel:<id>, user:<id>, <@U123>, @user, #channel)")
	cmd.Flags().StringVar(&req.Message, "message", "", "Message text")
	cmd.Flags().Int64Var(&req.PostAt, "post-at", 0, "Delivery time as Unix epoch seconds")
	cmd.Flags().DurationVar(&in, "in", 0, "Delivery delay from now (overrides --post-at)")
	cmd.Flags().StringVar(&req.ThreadID, "thread", "", "Parent message ts for a threaded reply")
	cmd.Flags().StringVar(&req.AccountID, "account", "", "Slack account id (default account when empty)")

	return cmd
}

// functionsCmd 列出已注册的工具及参数
func functionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "functions",
		Short: "List the agent tools and their parameters as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(app.WithLogOutput("stderr"))
			if err != nil {
				return err
			}
			defer a.Shutdown()

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(a.Registry().ListInfo())
		},
	}
}

// versionCmd 显示版本信息
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "openclaw-slack", version)
		},
	}
}
