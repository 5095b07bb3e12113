package handler

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/sakif/sageexcel/internal/apperror"
	"github.com/sakif/sageexcel/internal/model"
	"github.com/sakif/sageexcel/internal/service"
)

// FileHandler serves upload, listing, download, preview and delete of the
// caller's spreadsheets.
type FileHandler struct {
	svc      *service.FileService
	maxBytes int64
	logger   *slog.Logger
}

// NewFileHandler creates a FileHandler. maxBytes caps a multipart upload.
func NewFileHandler(svc *service.FileService, maxBytes int64, logger *slog.Logger) *FileHandler {
	return &FileHandler{svc: svc, maxBytes: maxBytes, logger: logger}
}

type uploadResponse struct {
	Message string `json:"message"`
	FileID  string `json:"fileId"`
}

// HandleUpload stores the multipart field "file".
//
// HTTP: POST /api/auth/upload
func (h *FileHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, h.logger, apperror.ValidationFailed("file",
				"File is larger than "+strconv.FormatInt(h.maxBytes, 10)+" bytes"))
			return
		}
		// Not multipart at all: same as no file.
		writeError(w, h.logger, apperror.NoFile())
		return
	}
	defer r.MultipartForm.RemoveAll()

	part, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, h.logger, apperror.NoFile())
		return
	}
	defer part.Close()

	data, err := io.ReadAll(part)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	f, err := h.svc.Upload(r.Context(), userID, service.UploadInput{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{Message: "File uploaded successfully", FileID: f.ID})
}

// HandleList returns the caller's files without their bytes.
//
// HTTP: GET /api/auth/getFiles
func (h *FileHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	files, err := h.svc.List(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"files": files})
}

// HandleDownload sends the stored bytes as an attachment.
//
// HTTP: GET /api/auth/download/{id}
func (h *FileHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	h.serveRaw(w, r, "attachment")
}

// HandlePreview sends the stored bytes for the browser to render.
//
// HTTP: GET /api/auth/preview/{id}
func (h *FileHandler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	h.serveRaw(w, r, "inline")
}

func (h *FileHandler) serveRaw(w http.ResponseWriter, r *http.Request, disposition string) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	f, err := h.svc.Download(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeRaw(w, f, disposition)
}

func writeRaw(w http.ResponseWriter, f *model.File, disposition string) {
	w.Header().Set("Content-Type", f.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(f.Data)))
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": f.Filename}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(f.Data)
}

// HandleRows decodes the spreadsheet server-side.
//
// HTTP: GET /api/auth/preview/{id}/rows
func (h *FileHandler) HandleRows(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	decoded, err := h.svc.Rows(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeNegotiated(w, r, http.StatusOK, decoded)
}

// HandleDelete removes a file together with its analyses.
//
// HTTP: DELETE /api/auth/delete/{id}
func (h *FileHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.svc.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "File deleted successfully"})
}
