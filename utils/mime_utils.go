package utils

import (
	"mime"
	"path"
)

const defaultMimeType = "application/octet-stream"

// DetermineMimeType guesses the content type from the extension of filename.
func DetermineMimeType(filename string) string {
	mimeType := mime.TypeByExtension(path.Ext(filename))
	if mimeType == "" {
		return defaultMimeType
	}
	return mimeType
}
