package attachment

import (
	"context"
	"errors"
	"time"

	"github.com/anoixa/taskboard/database/models"
	"github.com/anoixa/taskboard/storage"
	"github.com/anoixa/taskboard/utils/generator"
	"go.uber.org/zap"
)

// PathIndex 返回仍被记录引用的存储路径
type PathIndex interface {
	StoredPaths(ctx context.Context) (map[string]struct{}, error)
}

// SweepReport 一次清理的结果
type SweepReport struct {
	Scanned      int
	Orphaned     int
	Removed      int
	Failed       int
	FreedBytes   int64
	OrphanedList []string
}

// Sweeper 清理没有记录引用的文件
type Sweeper struct {
	index   PathIndex
	storage storage.Provider
	log     *zap.Logger
	now     func() time.Time
}

// NewSweeper 创建清理器
func NewSweeper(index PathIndex, provider storage.Provider, log *zap.Logger) *Sweeper {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sweeper{index: index, storage: provider, log: log.Named("sweeper"), now: time.Now}
}

func sweepDirs() []string {
	return []string{
		models.FileKindImage.Dir(),
		models.FileKindVideo.Dir(),
		models.FileKindDocument.Dir(),
		generator.ThumbnailDir,
	}
}

// Sweep 删除修改时间早于 grace 且未被引用的文件
// grace 用于避开正在上传、尚未入库的文件
func (s *Sweeper) Sweep(ctx context.Context, grace time.Duration, dryRun bool) (*SweepReport, error) {
	referenced, err := s.index.StoredPaths(ctx)
	if err != nil {
		return nil, err
	}

	cutoff := s.now().Add(-grace)
	report := &SweepReport{}

	for _, dir := range sweepDirs() {
		err := s.storage.Walk(ctx, dir, func(info storage.FileInfo) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			report.Scanned++

			if _, ok := referenced[info.Path]; ok {
				return nil
			}
			if info.ModTime.After(cutoff) {
				return nil
			}

			report.Orphaned++
			report.OrphanedList = append(report.OrphanedList, info.Path)
			if dryRun {
				return nil
			}

			if err := s.storage.DeleteWithContext(ctx, info.Path); err != nil && !errors.Is(err, storage.ErrNotFound) {
				report.Failed++
				s.log.Warn("failed to remove orphaned file", zap.String("path", info.Path), zap.Error(err))
				return nil
			}
			report.Removed++
			report.FreedBytes += info.Size
			return nil
		})
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return report, err
		}
	}

	s.log.Info("sweep finished",
		zap.Bool("dry_run", dryRun),
		zap.Int("scanned", report.Scanned),
		zap.Int("orphaned", report.Orphaned),
		zap.Int("removed", report.Removed),
		zap.Int("failed", report.Failed))
	return report, nil
}
