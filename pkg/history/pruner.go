package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	// DefaultPruneSpec 每小时整点清理（6 字段，含秒）
	DefaultPruneSpec = "0 0 * * * *"

	// DefaultRetention 默认保留 30 天
	DefaultRetention = 30 * 24 * time.Hour
)

// Pruner 按 cron 表达式定期清理过期记录
type Pruner struct {
	repo      *Repository
	retention time.Duration
	spec      string
	logger    *slog.Logger
	now       func() time.Time

	cron *cron.Cron
}

// NewPruner 创建清理器
func NewPruner(repo *Repository, spec string, retention time.Duration, logger *slog.Logger) (*Pruner, error) {
	if spec == "" {
		spec = DefaultPruneSpec
	}
	if retention <= 0 {
		retention = DefaultRetention
	}

	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(spec); err != nil {
		return nil, fmt.Errorf("invalid prune cron expression: %w", err)
	}

	return &Pruner{
		repo:      repo,
		retention: retention,
		spec:      spec,
		logger:    logger,
		now:       time.Now,
		cron:      cron.New(cron.WithParser(parser)),
	}, nil
}

// Start 启动定时清理
func (p *Pruner) Start() error {
	if _, err := p.cron.AddFunc(p.spec, func() {
		if _, err := p.PruneOnce(context.Background()); err != nil {
			p.logger.Error("history prune failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule history prune: %w", err)
	}
	p.cron.Start()
	p.logger.Info("history pruner started", "spec", p.spec, "retention", p.retention.String())
	return nil
}

// Stop 停止并等待正在运行的清理完成
func (p *Pruner) Stop() {
	ctx := p.cron.Stop()
	<-ctx.Done()
	p.logger.Info("history pruner stopped")
}

// PruneOnce 立即清理一次
func (p *Pruner) PruneOnce(ctx context.Context) (int64, error) {
	cutoff := p.now().Add(-p.retention)
	deleted, err := p.repo.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		p.logger.Info("history pruned", "deleted", deleted, "cutoff", cutoff.Format(time.RFC3339))
	}
	return deleted, nil
}
