package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/nikhilbhutani/docchat/internal/document"
	"github.com/nikhilbhutani/docchat/internal/models"
	"github.com/nikhilbhutani/docchat/internal/storage"
)

type DocumentService interface {
	Upload(ctx context.Context, req document.UploadRequest) (*models.Document, error)
	List(ctx context.Context) ([]models.Document, error)
	Delete(ctx context.Context, id int64) (*document.DeleteResult, error)
}

type DocumentHandler struct {
	svc DocumentService
}

func NewDocumentHandler(svc DocumentService) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil { // 32MB max
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file required")
		return
	}
	defer file.Close()

	doc, err := h.svc.Upload(r.Context(), document.UploadRequest{
		Filename: header.Filename,
		Data:     file,
	})
	switch {
	case err == nil:
	case errors.Is(err, document.ErrUnsupportedFileType), errors.Is(err, storage.ErrInvalidName):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, document.ErrDuplicateName):
		writeError(w, http.StatusConflict, fmt.Sprintf("File with same name %s already present in library", header.Filename))
		return
	default:
		slog.Error("upload failed", "name", header.Filename, "error", err)
		writeError(w, http.StatusInternalServerError, "upload failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("File %s has been successfully uploaded with id : %d", doc.Name, doc.ID),
	})
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.svc.List(r.Context())
	if err != nil {
		slog.Error("list documents failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

type deleteRequest struct {
	ID *int64 `json:"id"`
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := decodeJSON(r, &req); err != nil || req.ID == nil {
		writeError(w, http.StatusBadRequest, "document id required")
		return
	}

	res, err := h.svc.Delete(r.Context(), *req.ID)
	if err != nil {
		slog.Error("delete document failed", "document_id", *req.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete document")
		return
	}

	switch {
	case res.Removed:
		writeJSON(w, http.StatusOK, map[string]string{
			"message": fmt.Sprintf("Successfully deleted document with file_id %d from the library.", *req.ID),
		})
	case res.Reason == document.ReasonDocumentInUse:
		writeJSON(w, http.StatusConflict, map[string]string{"error": res.Message, "reason": string(res.Reason)})
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": res.Message, "reason": string(res.Reason)})
	}
}
