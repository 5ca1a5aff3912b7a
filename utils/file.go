package utils

import (
	"mime/multipart"
	"path/filepath"
	"strings"
)

// Avatar uploads are capped well below this; anything larger is rejected
// before it reaches R2.
const MaxImageSize = 5 * 1024 * 1024 // 5MB

var allowedImageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// IsAllowedImage checks extension, declared content type and size of an
// uploaded image.
func IsAllowedImage(fileHeader *multipart.FileHeader) bool {
	if fileHeader.Size <= 0 || fileHeader.Size > MaxImageSize {
		return false
	}
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedImageExts[ext] {
		return false
	}
	return strings.HasPrefix(fileHeader.Header.Get("Content-Type"), "image/")
}
