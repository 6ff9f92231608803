package history

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/paneq/awesome-openclaw-slack/pkg/scheduler"
)

// Repository Record 数据访问层
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建 Repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate 自动迁移表结构
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&Record{})
}

// Create 写入一条记录
func (r *Repository) Create(ctx context.Context, rec *Record) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

// Record 记录一次编排结果
func (r *Repository) Record(ctx context.Context, req scheduler.Request, result scheduler.Result, err error) error {
	return r.Create(ctx, NewRecord(req, result, err))
}

// List 按创建时间倒序列出记录，status 为 nil 时不过滤
func (r *Repository) List(ctx context.Context, status *Status, limit, offset int) ([]Record, error) {
	var records []Record
	query := r.db.WithContext(ctx).Model(&Record{})

	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Order("created_at DESC").Order("id DESC").Find(&records).Error
	return records, err
}

// Count 统计记录数量
func (r *Repository) Count(ctx context.Context, status *Status) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&Record{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	err := query.Count(&count).Error
	return count, err
}

// DeleteBefore 物理删除 before 之前创建的记录，返回删除数量
func (r *Repository) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Unscoped().Where("created_at < ?", before).Delete(&Record{})
	return res.RowsAffected, res.Error
}
