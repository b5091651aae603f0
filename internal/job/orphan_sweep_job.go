package job

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/brauliobolano/LinkedInClone/internal/metrics"
)

// OrphanStore finds and removes comments no post references any more.
type OrphanStore interface {
	FindOrphanIDs(ctx context.Context) ([]bson.ObjectID, error)
	DeleteByIDs(ctx context.Context, ids []bson.ObjectID) (int64, error)
}

// OrphanSweepJob reports comments left behind by removed posts and, when
// Purge is set, deletes them.
type OrphanSweepJob struct {
	store   OrphanStore
	metrics *metrics.Metrics
	logger  *zap.Logger
	purge   bool
	timeout time.Duration
}

func NewOrphanSweepJob(store OrphanStore, m *metrics.Metrics, logger *zap.Logger, purge bool) *OrphanSweepJob {
	return &OrphanSweepJob{
		store:   store,
		metrics: m,
		logger:  logger,
		purge:   purge,
		timeout: time.Minute,
	}
}

// Run satisfies cron.Job.
func (j *OrphanSweepJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	j.logger.Info("Starting orphan comment sweep")

	ids, err := j.store.FindOrphanIDs(ctx)
	if err != nil {
		j.logger.Error("Failed to find orphan comments", zap.Error(err))
		return
	}
	j.metrics.SetOrphanComments(len(ids))

	if len(ids) == 0 {
		j.logger.Info("No orphan comments found")
		return
	}
	if !j.purge {
		j.logger.Info("Found orphan comments", zap.Int("count", len(ids)))
		return
	}

	deleted, err := j.store.DeleteByIDs(ctx, ids)
	if err != nil {
		j.logger.Error("Failed to delete orphan comments",
			zap.Int("count", len(ids)),
			zap.Error(err),
		)
		return
	}
	j.metrics.SetOrphanComments(len(ids) - int(deleted))

	j.logger.Info("Orphan comment sweep completed",
		zap.Int("found", len(ids)),
		zap.Int64("deleted", deleted),
	)
}

// Schedule starts a cron scheduler running job on spec. The caller stops it.
func Schedule(spec string, job cron.Job, logger *zap.Logger) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.Recover(cronLogger{logger})))
	if _, err := c.AddJob(spec, job); err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct{ log *zap.Logger }

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Infow(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
