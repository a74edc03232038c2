package attachment

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/anoixa/taskboard/database/models"
)

// ErrInvalidEntity entity_type 或 entity_id 不合法
var ErrInvalidEntity = errors.New("invalid entity reference")

// EntityRef 附件宿主：task、project 或 comment 之一及其 ID
type EntityRef struct {
	Kind models.EntityKind
	ID   uint
}

// TaskRef 任务引用
func TaskRef(id uint) EntityRef { return EntityRef{Kind: models.EntityTask, ID: id} }

// ProjectRef 项目引用
func ProjectRef(id uint) EntityRef { return EntityRef{Kind: models.EntityProject, ID: id} }

// CommentRef 评论引用
func CommentRef(id uint) EntityRef { return EntityRef{Kind: models.EntityComment, ID: id} }

// ParseEntityRef 解析请求参数
func ParseEntityRef(kind, id string) (EntityRef, error) {
	k := models.EntityKind(strings.ToLower(strings.TrimSpace(kind)))
	if !k.Valid() {
		return EntityRef{}, fmt.Errorf("%w: unknown entity_type %q", ErrInvalidEntity, kind)
	}

	n, err := strconv.ParseUint(strings.TrimSpace(id), 10, 64)
	if err != nil || n == 0 {
		return EntityRef{}, fmt.Errorf("%w: entity_id must be a positive integer", ErrInvalidEntity)
	}

	return EntityRef{Kind: k, ID: uint(n)}, nil
}

func (r EntityRef) String() string {
	return fmt.Sprintf("%s#%d", r.Kind, r.ID)
}
