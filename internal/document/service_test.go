package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/nikhilbhutani/docchat/internal/models"
	"github.com/nikhilbhutani/docchat/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRegistry struct {
	docs      []models.Document
	nextID    int64
	insertErr error
}

func (r *memRegistry) Register(_ context.Context, name string) (*models.Document, error) {
	if r.insertErr != nil {
		return nil, r.insertErr
	}
	for _, d := range r.docs {
		if d.Name == name {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateName, name)
		}
	}
	r.nextID++
	d := models.Document{ID: r.nextID, Name: name, UploadedAt: time.Now()}
	r.docs = append(r.docs, d)
	return &d, nil
}

func (r *memRegistry) NameExists(_ context.Context, name string) (bool, error) {
	for _, d := range r.docs {
		if d.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRegistry) List(context.Context) ([]models.Document, error) {
	return append([]models.Document{}, r.docs...), nil
}

func (r *memRegistry) ListActive(context.Context) ([]models.Document, error) {
	var out []models.Document
	for _, d := range r.docs {
		if d.IsActive {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *memRegistry) SetActive(_ context.Context, ids []int64) error {
	for i := range r.docs {
		r.docs[i].IsActive = false
		for _, id := range ids {
			if r.docs[i].ID == id {
				r.docs[i].IsActive = true
			}
		}
	}
	return nil
}

func (r *memRegistry) Delete(_ context.Context, id int64) (*DeleteResult, error) {
	for i, d := range r.docs {
		if d.ID != id {
			continue
		}
		if d.IsActive {
			return inUseResult(id, d.Name), nil
		}
		r.docs = append(r.docs[:i], r.docs[i+1:]...)
		return &DeleteResult{Removed: true, Name: d.Name, Message: "deleted"}, nil
	}
	return notFoundResult(id), nil
}

type memBlobs map[string][]byte

func (b memBlobs) Write(_ context.Context, name string, data io.Reader) error {
	if _, ok := b[name]; ok {
		return storage.ErrAlreadyExists
	}
	buf, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	b[name] = buf
	return nil
}

func (b memBlobs) Read(_ context.Context, name string) ([]byte, error) {
	if d, ok := b[name]; ok {
		return d, nil
	}
	return nil, storage.ErrNotFound
}

func (b memBlobs) Exists(_ context.Context, name string) (bool, error) {
	_, ok := b[name]
	return ok, nil
}

func (b memBlobs) Delete(_ context.Context, name string) error {
	delete(b, name)
	return nil
}

func upload(svc *Service, name string) (*models.Document, error) {
	return svc.Upload(context.Background(), UploadRequest{Filename: name, Data: bytes.NewReader([]byte("%PDF"))})
}

func TestUpload_ListScenario(t *testing.T) {
	reg, blobs := &memRegistry{}, memBlobs{}
	svc := NewService(reg, blobs)

	doc, err := upload(svc, "a.pdf")
	require.NoError(t, err)
	assert.Equal(t, int64(1), doc.ID)

	docs, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "a.pdf", docs[0].Name)
	assert.False(t, docs[0].IsActive)
	assert.Contains(t, blobs, "a.pdf")
}

func TestUpload_RejectsUnsupportedType(t *testing.T) {
	reg, blobs := &memRegistry{}, memBlobs{}
	_, err := upload(NewService(reg, blobs), "notes.txt")
	assert.ErrorIs(t, err, ErrUnsupportedFileType)
	assert.Empty(t, blobs)
	assert.Empty(t, reg.docs)
}

func TestUpload_RejectsOverlongName(t *testing.T) {
	reg, blobs := &memRegistry{}, memBlobs{}
	name := strings.Repeat("a", storage.MaxNameLength) + ".pdf"

	_, err := upload(NewService(reg, blobs), name)
	assert.ErrorIs(t, err, storage.ErrInvalidName)
	assert.Empty(t, blobs)
	assert.Empty(t, reg.docs)
}

func TestUpload_ExtensionCaseInsensitive(t *testing.T) {
	_, err := upload(NewService(&memRegistry{}, memBlobs{}), "Report.DOCX")
	assert.NoError(t, err)
}

func TestUpload_Duplicate(t *testing.T) {
	reg, blobs := &memRegistry{}, memBlobs{}
	svc := NewService(reg, blobs)

	_, err := upload(svc, "a.pdf")
	require.NoError(t, err)
	_, err = upload(svc, "a.pdf")
	assert.ErrorIs(t, err, ErrDuplicateName)
	assert.Len(t, reg.docs, 1)

	// A stray blob without a registry row also blocks the name.
	blobs["b.pdf"] = []byte("x")
	_, err = upload(svc, "b.pdf")
	assert.ErrorIs(t, err, ErrDuplicateName)
	assert.Len(t, reg.docs, 1)
}

func TestUpload_RegistryFailureRemovesBlob(t *testing.T) {
	reg, blobs := &memRegistry{insertErr: errors.New("db down")}, memBlobs{}
	_, err := upload(NewService(reg, blobs), "a.pdf")
	require.Error(t, err)
	assert.Empty(t, blobs)
}

func TestDelete(t *testing.T) {
	reg, blobs := &memRegistry{}, memBlobs{}
	svc := NewService(reg, blobs)
	ctx := context.Background()

	a, _ := upload(svc, "a.pdf")
	b, _ := upload(svc, "b.pdf")
	require.NoError(t, reg.SetActive(ctx, []int64{a.ID}))

	res, err := svc.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, res.Removed)
	assert.Equal(t, ReasonDocumentInUse, res.Reason)
	assert.Contains(t, blobs, "a.pdf")
	assert.Len(t, reg.docs, 2)

	res, err = svc.Delete(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, res.Removed)
	assert.NotContains(t, blobs, "b.pdf")

	res, err = svc.Delete(ctx, 99)
	require.NoError(t, err)
	assert.Equal(t, ReasonNotFound, res.Reason)
	assert.Empty(t, res.Name)
	assert.Equal(t, "Document with ID 99 not found.", res.Message)
}
