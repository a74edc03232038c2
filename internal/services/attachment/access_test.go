package attachment

import (
	"context"
	"testing"

	"github.com/anoixa/taskboard/database/models"
	"github.com/anoixa/taskboard/database/repo/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessChecker_CanWrite(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.WithContext(ctx).Create(&models.Project{ID: 1, Name: "Launch", CreatedBy: 10}).Error)
	require.NoError(t, db.WithContext(ctx).Create(&models.Task{ID: 1, ProjectID: 1, Title: "Design", AssignedTo: 20, CreatedBy: 10}).Error)
	require.NoError(t, db.WithContext(ctx).Create(&models.Comment{ID: 1, TaskID: 1, UserID: 30, Content: "looks good"}).Error)

	checker := NewAccessChecker(entities.NewRepository(db))

	tests := []struct {
		name  string
		actor Actor
		ref   EntityRef
		want  error
	}{
		{"task assignee", Actor{UserID: 20, Role: models.RoleMember}, TaskRef(1), nil},
		{"task assigner", Actor{UserID: 10, Role: models.RoleMember}, TaskRef(1), nil},
		{"task outsider", Actor{UserID: 30, Role: models.RoleMember}, TaskRef(1), ErrWriteDenied},
		{"manager on any task", Actor{UserID: 99, Role: models.RoleManager}, TaskRef(1), nil},
		{"admin on any project", Actor{UserID: 99, Role: models.RoleAdmin}, ProjectRef(1), nil},
		{"project owner", Actor{UserID: 10, Role: models.RoleMember}, ProjectRef(1), nil},
		{"project member", Actor{UserID: 20, Role: models.RoleMember}, ProjectRef(1), ErrWriteDenied},
		{"comment author", Actor{UserID: 30, Role: models.RoleMember}, CommentRef(1), nil},
		{"comment other", Actor{UserID: 20, Role: models.RoleMember}, CommentRef(1), ErrWriteDenied},
		{"missing task", Actor{UserID: 20, Role: models.RoleMember}, TaskRef(404), ErrEntityNotFound},
		{"missing task for admin", Actor{UserID: 1, Role: models.RoleAdmin}, TaskRef(404), ErrEntityNotFound},
		{"anonymous", Actor{}, TaskRef(1), ErrWriteDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checker.CanWrite(ctx, tt.actor, tt.ref)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
