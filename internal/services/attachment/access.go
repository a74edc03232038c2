package attachment

import (
	"context"
	"errors"

	"github.com/anoixa/taskboard/database/models"
	"github.com/anoixa/taskboard/database/repo/entities"
)

var (
	// ErrEntityNotFound 目标实体不存在
	ErrEntityNotFound = errors.New("entity not found")
	// ErrWriteDenied 无权向目标实体上传
	ErrWriteDenied = errors.New("not allowed to attach files to this entity")
)

// OwnershipLookup 查询实体归属
type OwnershipLookup interface {
	Ownership(ctx context.Context, kind models.EntityKind, id uint) (*entities.Ownership, error)
}

// Actor 发起请求的用户
type Actor struct {
	UserID uint
	Role   string
}

// AccessChecker 上传前的写权限检查
type AccessChecker struct {
	lookup OwnershipLookup
}

// NewAccessChecker 创建权限检查器
func NewAccessChecker(lookup OwnershipLookup) *AccessChecker {
	return &AccessChecker{lookup: lookup}
}

// CanWrite 任务负责人与分配人、项目创建者、评论作者或特权角色可以写入
// 实体不存在时即使是特权角色也返回 ErrEntityNotFound
func (c *AccessChecker) CanWrite(ctx context.Context, actor Actor, ref EntityRef) error {
	owners, err := c.lookup.Ownership(ctx, ref.Kind, ref.ID)
	if err != nil {
		if errors.Is(err, entities.ErrEntityNotFound) {
			return ErrEntityNotFound
		}
		return err
	}

	if models.IsPrivileged(actor.Role) || owners.Allows(actor.UserID) {
		return nil
	}
	return ErrWriteDenied
}
