package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SupabaseStore keeps blobs in a Supabase Storage bucket.
type SupabaseStore struct {
	baseURL    string
	serviceKey string
	bucket     string
	httpClient *http.Client
}

func NewSupabaseStore(supabaseURL, serviceKey, bucket string) *SupabaseStore {
	return &SupabaseStore{
		baseURL:    strings.TrimRight(supabaseURL, "/") + "/storage/v1",
		serviceKey: serviceKey,
		bucket:     bucket,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

func (s *SupabaseStore) objectURL(name string) string {
	return fmt.Sprintf("%s/object/%s/%s", s.baseURL, s.bucket, url.PathEscape(name))
}

func (s *SupabaseStore) newRequest(ctx context.Context, method, name string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.objectURL(name), body)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", method, err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	return req, nil
}

// Write uploads without x-upsert, so Supabase refuses to replace an existing object.
func (s *SupabaseStore) Write(ctx context.Context, name string, data io.Reader) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	buf := &bytes.Buffer{}
	if _, err := io.Copy(buf, data); err != nil {
		return fmt.Errorf("read upload data: %w", err)
	}

	req, err := s.newRequest(ctx, http.MethodPost, name, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload blob: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		if isDuplicate(resp.StatusCode, body) {
			return fmt.Errorf("%w: %s", ErrAlreadyExists, name)
		}
		return fmt.Errorf("upload failed (%d): %s", resp.StatusCode, string(body))
	}
	return nil
}

func (s *SupabaseStore) Read(ctx context.Context, name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	req, err := s.newRequest(ctx, http.MethodGet, name, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download blob: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))
		if isMissing(resp.StatusCode, body) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("download failed (%d): %s", resp.StatusCode, body)
	}
	return io.ReadAll(resp.Body)
}

func (s *SupabaseStore) Exists(ctx context.Context, name string) (bool, error) {
	if err := ValidateName(name); err != nil {
		return false, err
	}

	req, err := s.newRequest(ctx, http.MethodHead, name, nil)
	if err != nil {
		return false, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("stat blob: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode < 300:
		return true, nil
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("stat failed (%d)", resp.StatusCode)
	}
}

func (s *SupabaseStore) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	req, err := s.newRequest(ctx, http.MethodDelete, name, nil)
	if err != nil {
		return err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete blob: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))
		if isMissing(resp.StatusCode, body) {
			return nil
		}
		return fmt.Errorf("delete failed (%d): %s", resp.StatusCode, body)
	}
	return nil
}

const errBodyLimit = 4 << 10

// Supabase reports missing objects as 404, or as a 400 naming the object as
// not found on older storage-api versions.
func isMissing(status int, body []byte) bool {
	if status == http.StatusNotFound {
		return true
	}
	return status == http.StatusBadRequest && bytes.Contains(bytes.ToLower(body), []byte("not found"))
}

func isDuplicate(status int, body []byte) bool {
	if status == http.StatusConflict {
		return true
	}
	return status == http.StatusBadRequest && bytes.Contains(bytes.ToLower(body), []byte("duplicate"))
}
