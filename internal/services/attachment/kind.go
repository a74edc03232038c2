package attachment

import "github.com/anoixa/taskboard/database/models"

var imageExtensions = map[string]struct{}{
	"jpg": {}, "jpeg": {}, "png": {}, "gif": {}, "webp": {}, "bmp": {}, "tif": {}, "tiff": {},
}

var videoExtensions = map[string]struct{}{
	"mp4": {}, "webm": {}, "mov": {}, "avi": {}, "mkv": {}, "wmv": {}, "flv": {}, "m4v": {},
}

// ClassifyExtension 按扩展名分类，未知扩展名都归为文档
func ClassifyExtension(ext string) models.FileKind {
	if _, ok := imageExtensions[ext]; ok {
		return models.FileKindImage
	}
	if _, ok := videoExtensions[ext]; ok {
		return models.FileKindVideo
	}
	return models.FileKindDocument
}

// Icon 前端使用的图标键
func Icon(kind models.FileKind, ext string) string {
	switch kind {
	case models.FileKindImage:
		return "image"
	case models.FileKindVideo:
		return "video"
	}

	switch ext {
	case "pdf":
		return "pdf"
	case "doc", "docx", "odt", "rtf":
		return "word"
	case "xls", "xlsx", "ods", "csv":
		return "excel"
	case "ppt", "pptx", "odp":
		return "powerpoint"
	case "zip", "rar", "7z", "tar", "gz":
		return "archive"
	case "txt", "md", "log":
		return "text"
	}
	return "file"
}
