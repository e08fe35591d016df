package utils

import (
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAvatarStorageDisabledWithoutCredentials(t *testing.T) {
	s := NewAvatarStorage("", "", "")
	assert.False(t, s.Enabled())

	_, err := s.UploadAvatar(&multipart.FileHeader{Filename: "me.png"}, "u1")
	assert.ErrorIs(t, err, ErrStorageNotConfigured)
	assert.NoError(t, s.DeleteAvatar("https://x.supabase.co/storage/v1/object/public/uploads/avatars/u1.png"))

	var nilStorage *AvatarStorage
	assert.False(t, nilStorage.Enabled())
}

func TestAvatarStoragePublicURL(t *testing.T) {
	s := NewAvatarStorage("https://x.supabase.co/", "key", "media")
	assert.True(t, s.Enabled())
	assert.Equal(t, "https://x.supabase.co/storage/v1/object/public/media/avatars/u1.png", s.PublicURL("avatars/u1.png"))

	// Preset avatars live elsewhere and are left alone.
	assert.NoError(t, s.DeleteAvatar("/avatars/cat.png"))
}
