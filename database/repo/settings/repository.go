package settings

import (
	"context"
	"fmt"

	"github.com/anoixa/taskboard/database"
	"github.com/anoixa/taskboard/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository 键值配置仓库接口
type Repository interface {
	GetAll(ctx context.Context) (map[string]string, error)
	Get(ctx context.Context, key string) (string, bool, error)
	SetMany(ctx context.Context, values map[string]string) error
	EnsureDefaults(ctx context.Context, defaults map[string]string) (int, error)
}

// SettingRepository 基于 gorm 的实现
type SettingRepository struct {
	db database.Provider
}

// NewRepository 创建配置仓库
func NewRepository(db database.Provider) *SettingRepository {
	return &SettingRepository{db: db}
}

// GetAll 读取全部配置
func (r *SettingRepository) GetAll(ctx context.Context) (map[string]string, error) {
	var rows []models.Setting
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[row.Key] = row.Value
	}
	return values, nil
}

// Get 读取单个配置
func (r *SettingRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var rows []models.Setting
	if err := r.db.WithContext(ctx).Where("key = ?", key).Limit(1).Find(&rows).Error; err != nil {
		return "", false, fmt.Errorf("failed to load setting %q: %w", key, err)
	}
	if len(rows) == 0 {
		return "", false, nil
	}
	return rows[0].Value, true, nil
}

// SetMany 在一个事务中写入多个配置，已存在的键会被覆盖
func (r *SettingRepository) SetMany(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}

	return r.db.TransactionWithContext(ctx, func(tx *gorm.DB) error {
		for key, value := range values {
			row := models.Setting{Key: key, Value: value}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(&row).Error
			if err != nil {
				return fmt.Errorf("failed to save setting %q: %w", key, err)
			}
		}
		return nil
	})
}

// EnsureDefaults 只写入缺失的键，返回新写入的数量
func (r *SettingRepository) EnsureDefaults(ctx context.Context, defaults map[string]string) (int, error) {
	created := 0
	err := r.db.TransactionWithContext(ctx, func(tx *gorm.DB) error {
		for key, value := range defaults {
			row := models.Setting{Key: key, Value: value}
			result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
			if result.Error != nil {
				return fmt.Errorf("failed to seed setting %q: %w", key, result.Error)
			}
			created += int(result.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}
