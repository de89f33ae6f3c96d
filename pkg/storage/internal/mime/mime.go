// Package mime maps artifact keys to the content types sent to object stores.
package mime

import "path"

// ContentType returns the content type for key based on its extension.
func ContentType(key string) string {
	switch path.Ext(key) {
	case ".png":
		return "image/png"
	case ".txt":
		return "text/plain; charset=utf-8"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
