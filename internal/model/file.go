package model

import "time"

// File is an uploaded spreadsheet.
//
// Data holds the raw bytes only when they were explicitly loaded (download,
// preview, chart building). Listings leave it nil, and it is never
// serialized to JSON; the bytes are served raw by the download endpoints.
type File struct {
	ID          string    `json:"_id"`
	Filename    string    `json:"filename"`
	UploadDate  time.Time `json:"uploadDate"`
	Headers     []string  `json:"headers"`
	Size        int64     `json:"size"`
	UploadedBy  string    `json:"uploadedBy"`
	ContentType string    `json:"contentType"`
	Data        []byte    `json:"-"`
	Analyses    []string  `json:"analyses"`
}
