package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rs/xid"

	"github.com/sakif/sageexcel/internal/apperror"
	"github.com/sakif/sageexcel/internal/metrics"
	"github.com/sakif/sageexcel/internal/model"
	"github.com/sakif/sageexcel/internal/repository"
	"github.com/sakif/sageexcel/internal/sheet"
)

// FileService stores uploaded spreadsheets: metadata in the FileRepository,
// bytes in the BlobStore under the file's id.
type FileService struct {
	files  repository.FileRepository
	users  repository.UserRepository
	blobs  repository.BlobStore
	logger *slog.Logger
}

func NewFileService(
	files repository.FileRepository,
	users repository.UserRepository,
	blobs repository.BlobStore,
	logger *slog.Logger,
) *FileService {
	return &FileService{files: files, users: users, blobs: blobs, logger: logger}
}

type UploadInput struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Upload stores a file for userID. Headers are read from the spreadsheet; a
// file that cannot be decoded is still stored, with no headers.
func (s *FileService) Upload(ctx context.Context, userID string, in UploadInput) (*model.File, error) {
	if len(in.Data) == 0 {
		return nil, apperror.NoFile()
	}
	filename := strings.TrimSpace(in.Filename)
	if filename == "" {
		filename = "upload"
	}
	contentType := in.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return nil, asUserNotFound(err, userID)
	}

	headers := []string{}
	if decoded, err := sheet.Decode(filename, contentType, in.Data); err != nil {
		s.logger.Warn("uploaded file could not be decoded",
			slog.String("userID", userID),
			slog.String("filename", filename),
			slog.String("error", err.Error()),
		)
	} else {
		headers = decoded.Headers
	}

	f := &model.File{
		ID:          xid.New().String(),
		Filename:    filename,
		Headers:     headers,
		Size:        int64(len(in.Data)),
		UploadedBy:  userID,
		ContentType: contentType,
	}

	// Bytes first: a metadata row never points at a missing blob.
	if err := s.blobs.Put(ctx, f.ID, contentType, in.Data); err != nil {
		return nil, fmt.Errorf("service/file: storing bytes: %w", err)
	}
	if err := s.files.CreateFile(ctx, f); err != nil {
		if delErr := s.blobs.Delete(ctx, f.ID); delErr != nil {
			s.logger.Error("failed to remove orphaned blob",
				slog.String("fileID", f.ID),
				slog.String("error", delErr.Error()),
			)
		}
		return nil, fmt.Errorf("service/file: saving metadata: %w", err)
	}

	metrics.RecordUpload(f.Size)
	s.logger.Info("file uploaded",
		slog.String("fileID", f.ID),
		slog.String("userID", userID),
		slog.String("filename", f.Filename),
		slog.Int64("size", f.Size),
		slog.Int("columns", len(headers)),
	)
	return f, nil
}

func (s *FileService) List(ctx context.Context, userID string) ([]model.File, error) {
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return nil, asUserNotFound(err, userID)
	}

	files, err := s.files.ListFilesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/file: listing files: %w", err)
	}
	return files, nil
}

// Get returns the metadata of a file owned by userID.
func (s *FileService) Get(ctx context.Context, userID, fileID string) (*model.File, error) {
	f, err := s.files.GetFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if f.UploadedBy != userID {
		return nil, notOwned("file", fileID)
	}
	return f, nil
}

// Download returns the file with Data filled in.
func (s *FileService) Download(ctx context.Context, userID, fileID string) (*model.File, error) {
	f, err := s.Get(ctx, userID, fileID)
	if err != nil {
		return nil, err
	}
	data, err := s.blobs.Get(ctx, fileID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.logger.Error("file metadata without bytes", slog.String("fileID", fileID))
		}
		return nil, fmt.Errorf("service/file: reading bytes of %s: %w", fileID, err)
	}
	f.Data = data
	return f, nil
}

// Rows decodes the stored spreadsheet.
func (s *FileService) Rows(ctx context.Context, userID, fileID string) (*sheet.Sheet, error) {
	f, err := s.Download(ctx, userID, fileID)
	if err != nil {
		return nil, err
	}
	decoded, err := sheet.Decode(f.Filename, f.ContentType, f.Data)
	if err != nil {
		return nil, apperror.ValidationFailed("file", fmt.Sprintf("%s cannot be read as a spreadsheet", f.Filename))
	}
	return decoded, nil
}

// Delete removes the file, its analyses and its bytes. Metadata goes first
// so a failed blob delete leaves only unreachable bytes behind.
func (s *FileService) Delete(ctx context.Context, userID, fileID string) error {
	if _, err := s.Get(ctx, userID, fileID); err != nil {
		return err
	}
	if err := s.files.DeleteFile(ctx, fileID); err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, fileID); err != nil {
		s.logger.Error("failed to delete file bytes",
			slog.String("fileID", fileID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("file deleted", slog.String("fileID", fileID), slog.String("userID", userID))
	return nil
}
