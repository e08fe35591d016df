package utils

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	storage "github.com/supabase-community/storage-go"
)

var ErrStorageNotConfigured = errors.New("SUPABASE_URL or SUPABASE_KEY is not configured")

// AvatarStorage uploads profile pictures to a Supabase Storage bucket.
// Path: <bucket>/avatars/<userID><ext>
type AvatarStorage struct {
	baseURL string
	bucket  string
	client  *storage.Client
}

func NewAvatarStorage(supabaseURL, supabaseKey, bucket string) *AvatarStorage {
	if bucket == "" {
		bucket = "uploads"
	}
	s := &AvatarStorage{baseURL: strings.TrimRight(supabaseURL, "/"), bucket: bucket}
	if supabaseURL != "" && supabaseKey != "" {
		s.client = storage.NewClient(s.baseURL+"/storage/v1", supabaseKey, nil)
	}
	return s
}

func (s *AvatarStorage) Enabled() bool {
	return s != nil && s.client != nil
}

func (s *AvatarStorage) UploadAvatar(fileHeader *multipart.FileHeader, userID string) (string, error) {
	if !s.Enabled() {
		return "", ErrStorageNotConfigured
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	objectPath := fmt.Sprintf("avatars/%s%s", userID, ext)
	contentType := fileHeader.Header.Get("Content-Type")
	upsert := true
	options := storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	}

	if _, err := s.client.UploadFile(s.bucket, objectPath, &buf, options); err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}
	return s.PublicURL(objectPath), nil
}

func (s *AvatarStorage) PublicURL(objectPath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, objectPath)
}

// DeleteAvatar removes an object previously returned by UploadAvatar.
// URLs outside this bucket (preset avatars) are ignored.
func (s *AvatarStorage) DeleteAvatar(publicURL string) error {
	if !s.Enabled() || publicURL == "" {
		return nil
	}
	prefix := s.PublicURL("")
	if !strings.HasPrefix(publicURL, prefix) {
		return nil
	}
	object := strings.TrimPrefix(publicURL, prefix)
	if i := strings.Index(object, "?"); i != -1 {
		object = object[:i]
	}
	_, err := s.client.RemoveFile(s.bucket, []string{object})
	return err
}
