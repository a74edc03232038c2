package models

import "time"

// FileKind 附件分类，由扩展名决定，创建后不可变
type FileKind string

const (
	FileKindImage    FileKind = "image"
	FileKindVideo    FileKind = "video"
	FileKindDocument FileKind = "document"
)

// Dir 返回分类对应的存储子目录
func (k FileKind) Dir() string {
	switch k {
	case FileKindImage:
		return "images"
	case FileKindVideo:
		return "videos"
	default:
		return "documents"
	}
}

// EntityKind 附件所属实体类型
type EntityKind string

const (
	EntityTask    EntityKind = "task"
	EntityProject EntityKind = "project"
	EntityComment EntityKind = "comment"
)

// Valid 是否为已知实体类型
func (k EntityKind) Valid() bool {
	switch k {
	case EntityTask, EntityProject, EntityComment:
		return true
	}
	return false
}

// Attachment 上传文件记录
// 只插入和删除，不更新
type Attachment struct {
	ID               uint       `gorm:"primarykey" json:"id"`
	Filename         string     `gorm:"size:255;uniqueIndex;not null" json:"filename"`
	OriginalFilename string     `gorm:"size:255;not null" json:"original_filename"`
	FilePath         string     `gorm:"size:512;not null" json:"file_path"`
	ThumbnailPath    string     `gorm:"size:512" json:"-"`
	FileType         FileKind   `gorm:"size:20;not null" json:"file_type"`
	FileSize         int64      `gorm:"not null" json:"file_size"`
	MimeType         string     `gorm:"size:127" json:"mime_type"`
	Width            int        `json:"width,omitempty"`
	Height           int        `json:"height,omitempty"`
	EntityType       EntityKind `gorm:"size:20;not null;index:idx_attachments_entity,priority:1" json:"entity_type"`
	EntityID         uint       `gorm:"not null;index:idx_attachments_entity,priority:2" json:"entity_id"`
	UploadedBy       uint       `gorm:"not null;index" json:"uploaded_by"`
	Description      string     `gorm:"type:text" json:"description"`
	CreatedAt        time.Time  `gorm:"index" json:"created_at"`
}

// HasThumbnail 是否生成过缩略图
func (a *Attachment) HasThumbnail() bool {
	return a.ThumbnailPath != ""
}
