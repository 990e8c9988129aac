package models

import "time"

// Document is one uploaded file in the library. Name is the original filename
// and doubles as the blob storage key.
type Document struct {
	ID         int64     `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	IsActive   bool      `json:"is_active" db:"is_active"`
	UploadedAt time.Time `json:"uploaded_at" db:"uploaded_at"`
}

// File kinds the chunking pipeline can extract text from.
const (
	FileKindPDF  = ".pdf"
	FileKindDOCX = ".docx"
)

// AllowedExtensions lists the extensions accepted on upload.
var AllowedExtensions = []string{FileKindPDF, FileKindDOCX}
