// Package entities 读取附件宿主实体（任务、项目、评论）的归属信息
package entities

import (
	"context"
	"errors"
	"fmt"

	"github.com/anoixa/taskboard/database"
	"github.com/anoixa/taskboard/database/models"
	"gorm.io/gorm"
)

// ErrEntityNotFound 实体不存在
var ErrEntityNotFound = errors.New("entity not found")

// Ownership 实体的相关用户
type Ownership struct {
	// Writers 可以向实体上传附件的用户
	Writers []uint
}

// Allows 用户是否在可写名单内
func (o *Ownership) Allows(userID uint) bool {
	for _, id := range o.Writers {
		if id != 0 && id == userID {
			return true
		}
	}
	return false
}

// Repository 实体仓库
type Repository struct {
	db database.Provider
}

// NewRepository 创建实体仓库
func NewRepository(db database.Provider) *Repository {
	return &Repository{db: db}
}

// Ownership 查询实体的可写用户
// task: 负责人与分配人；project: 创建者；comment: 作者
func (r *Repository) Ownership(ctx context.Context, kind models.EntityKind, id uint) (*Ownership, error) {
	db := r.db.WithContext(ctx)

	switch kind {
	case models.EntityTask:
		var task models.Task
		if err := db.Select("id", "assigned_to", "created_by").First(&task, id).Error; err != nil {
			return nil, wrapLookup(kind, id, err)
		}
		return &Ownership{Writers: []uint{task.AssignedTo, task.CreatedBy}}, nil

	case models.EntityProject:
		var project models.Project
		if err := db.Select("id", "created_by").First(&project, id).Error; err != nil {
			return nil, wrapLookup(kind, id, err)
		}
		return &Ownership{Writers: []uint{project.CreatedBy}}, nil

	case models.EntityComment:
		var comment models.Comment
		if err := db.Select("id", "user_id").First(&comment, id).Error; err != nil {
			return nil, wrapLookup(kind, id, err)
		}
		return &Ownership{Writers: []uint{comment.UserID}}, nil
	}

	return nil, fmt.Errorf("unknown entity type %q", kind)
}

// GetUser 根据 ID 获取用户
func (r *Repository) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %d: %w", id, ErrEntityNotFound)
		}
		return nil, err
	}
	return &user, nil
}

func wrapLookup(kind models.EntityKind, id uint, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %d: %w", kind, id, ErrEntityNotFound)
	}
	return fmt.Errorf("failed to load %s %d: %w", kind, id, err)
}
