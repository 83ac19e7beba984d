package utils

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/tnqbao/gau-drive-service/entity"
)

var extensionTypes = map[string]string{
	".mp3":  entity.FileTypeMusic,
	".wav":  entity.FileTypeMusic,
	".flac": entity.FileTypeMusic,
	".ogg":  entity.FileTypeMusic,
	".m4a":  entity.FileTypeMusic,
	".pdf":  entity.FileTypePDF,
	".mp4":  entity.FileTypeVideo,
	".mkv":  entity.FileTypeVideo,
	".avi":  entity.FileTypeVideo,
	".mov":  entity.FileTypeVideo,
	".webm": entity.FileTypeVideo,
	".jpg":  entity.FileTypeImage,
	".jpeg": entity.FileTypeImage,
	".png":  entity.FileTypeImage,
	".gif":  entity.FileTypeImage,
	".bmp":  entity.FileTypeImage,
	".webp": entity.FileTypeImage,
	".svg":  entity.FileTypeImage,
}

// ResolveMimeType picks the content type reported by the client, falling back
// to the extension and finally to application/octet-stream.
func ResolveMimeType(filename, contentType string) string {
	if contentType != "" {
		return contentType
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); byExt != "" {
		return byExt
	}
	return "application/octet-stream"
}

// ClassifyFileType maps a filename and MIME type to one of the coarse
// file-type buckets. The classification happens once at upload time and is
// never recomputed.
func ClassifyFileType(filename, mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "audio/"):
		return entity.FileTypeMusic
	case strings.HasPrefix(mimeType, "video/"):
		return entity.FileTypeVideo
	case strings.HasPrefix(mimeType, "image/"):
		return entity.FileTypeImage
	case mimeType == "application/pdf":
		return entity.FileTypePDF
	}

	if t, ok := extensionTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return t
	}
	return entity.FileTypeOthers
}
