package audit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/logitrax/internal/domain/audit"
	"github.com/xiebiao/logitrax/pkg/metrics"
)

// Recorder 审计记录
// 写入失败只记日志和指标,不影响已经提交的业务
type Recorder struct {
	repo   audit.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewRecorder 创建审计记录器
func NewRecorder(repo audit.Repository, logger *zap.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger, now: time.Now}
}

// Record 追加一条审计日志
func (r *Recorder) Record(ctx context.Context, actor, action, details string) {
	entry := &audit.Entry{
		Timestamp: r.now().UTC(),
		Actor:     actor,
		Action:    action,
		Details:   details,
	}

	// 业务已提交,不再受请求取消影响
	if err := r.repo.Append(context.WithoutCancel(ctx), entry); err != nil {
		metrics.IncCounter(metrics.AuditFailuresTotal)
		r.logger.Warn("append audit log failed",
			zap.String("actor", actor),
			zap.String("action", action),
			zap.String("details", details),
			zap.Error(err),
		)
	}
}

// Recent 最近的审计日志（管理员查看）
func (r *Recorder) Recent(ctx context.Context, limit int) ([]*audit.Entry, error) {
	return r.repo.Recent(ctx, limit)
}
