package models

import "time"

// UploadResponse is returned by POST /api/files/upload.
type UploadResponse struct {
	URL string `json:"url"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// FileInfo describes a stored file and its share link.
type FileInfo struct {
	Name         string    `json:"name"`
	OriginalName string    `json:"original_name"`
	Size         int64     `json:"size"`
	CreatedAt    time.Time `json:"created_at"`
	URL          string    `json:"url"`
}
