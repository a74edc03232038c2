package models

import "time"

// Setting 键值配置表
type Setting struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	Key       string    `gorm:"size:100;uniqueIndex;not null" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

// All 返回需要自动迁移的模型
func All() []interface{} {
	return []interface{}{
		&User{},
		&Project{},
		&Task{},
		&Comment{},
		&Attachment{},
		&Setting{},
	}
}
