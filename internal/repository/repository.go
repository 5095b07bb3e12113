// Package repository declares the storage ports the service layer depends on.
//
// The sqlite package implements all of them; the storage package provides an
// alternative BlobStore. Services only ever see these interfaces.
package repository

import (
	"context"

	"github.com/sakif/sageexcel/internal/model"
)

// UserRepository is the credential store.
type UserRepository interface {
	// CreateUser assigns ID and timestamps. A taken email yields
	// apperror.ErrDuplicateEmail.
	CreateUser(ctx context.Context, user *model.User) error
	// GetUserByID returns the user with UploadedFiles and SavedAnalyses filled in.
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	ListUserSummaries(ctx context.Context) ([]model.UserSummary, error)
}

// FileRepository stores file metadata. The bytes live in a BlobStore.
type FileRepository interface {
	CreateFile(ctx context.Context, file *model.File) error
	// GetFile returns metadata with the Analyses back-reference filled in.
	GetFile(ctx context.Context, id string) (*model.File, error)
	ListFilesByUser(ctx context.Context, userID string) ([]model.File, error)
	// DeleteFile removes the file and every analysis built on it in one transaction.
	DeleteFile(ctx context.Context, id string) error
}

// AnalysisRepository stores saved chart recipes.
type AnalysisRepository interface {
	CreateAnalysis(ctx context.Context, a *model.Analysis) error
	GetAnalysis(ctx context.Context, id string) (*model.Analysis, error)
	ListAnalysesByUser(ctx context.Context, userID string) ([]model.Analysis, error)
	DeleteAnalysis(ctx context.Context, id string) error
}

// BlobStore holds raw file bytes under an opaque key.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	// Get returns apperror.ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
