// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// UploadedFiles and SavedAnalyses are back-references. They are not stored
// as columns: the repository fills them from the files/analyses foreign keys
// when a user is read, so they always reflect what actually exists.
type User struct {
	ID            string    `json:"_id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"` // bcrypt output, never serialized
	IsAdmin       bool      `json:"isAdmin"`
	UploadedFiles []string  `json:"uploadedFiles"`
	SavedAnalyses []string  `json:"savedAnalyses"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// UserSummary is the admin view of a user: identity plus counts.
type UserSummary struct {
	ID            string `json:"_id"`
	Name          string `json:"name"`
	IsAdmin       bool   `json:"isAdmin"`
	FilesUploaded int    `json:"filesUploaded"`
	AnalysesMade  int    `json:"analysesMade"`
}
