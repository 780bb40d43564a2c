package media_test

import (
	"context"
	"encoding/base64"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agriconnect/agriconnect/internal/domain/media"
	"github.com/agriconnect/agriconnect/internal/infra/mediastore"
	apperrors "github.com/agriconnect/agriconnect/pkg/errors"
)

func dataURI(mime string, payload []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(payload)
}

func TestUploadDataURI(t *testing.T) {
	svc := media.NewService(media.Config{}, mediastore.NewMemoryStorage())

	obj, err := svc.UploadDataURI(context.Background(), "u1", dataURI("image/png", []byte("fake png bytes")))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(obj.Key, "uploads/u1/"))
	require.True(t, strings.HasSuffix(obj.Key, ".png"))
	require.Equal(t, "/api/v1/media/"+obj.Key, obj.URL)
	require.Equal(t, int64(len("fake png bytes")), obj.Size)
	require.Equal(t, "image/png", obj.MimeType)
}

func TestUploadUsesPublicBaseURL(t *testing.T) {
	svc := media.NewService(media.Config{PublicBaseURL: "https://cdn.example.com/"}, mediastore.NewMemoryStorage())

	obj, err := svc.UploadDataURI(context.Background(), "u1", dataURI("image/jpeg", []byte("jpeg")))
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/"+obj.Key, obj.URL)
}

func TestUploadRejectsBadInput(t *testing.T) {
	svc := media.NewService(media.Config{}, mediastore.NewMemoryStorage())

	_, err := svc.UploadDataURI(context.Background(), "u1", "plain text")
	require.True(t, apperrors.IsCode(err, "invalid_input"))

	_, err = svc.UploadDataURI(context.Background(), "u1", dataURI("application/pdf", []byte("pdf")))
	require.True(t, apperrors.IsCode(err, "invalid_input"))

	_, err = svc.UploadDataURI(context.Background(), "u1", "data:image/png;base64,!!!not-base64!!!")
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func TestUploadEnforcesSizeLimit(t *testing.T) {
	svc := media.NewService(media.Config{MaxUploadBytes: 8}, mediastore.NewMemoryStorage())

	_, err := svc.UploadDataURI(context.Background(), "u1", dataURI("image/png", []byte("way more than eight bytes")))
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func TestFetchRoundTrip(t *testing.T) {
	svc := media.NewService(media.Config{}, mediastore.NewMemoryStorage())

	obj, err := svc.UploadDataURI(context.Background(), "u1", dataURI("image/webp", []byte("webp bytes")))
	require.NoError(t, err)

	rc, mimeType, err := svc.Fetch(context.Background(), obj.Key)
	require.NoError(t, err)
	defer rc.Close()

	require.Equal(t, "image/webp", mimeType)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, []byte("webp bytes"), data)
}

func TestFetchMissingKey(t *testing.T) {
	svc := media.NewService(media.Config{}, mediastore.NewMemoryStorage())

	_, _, err := svc.Fetch(context.Background(), "uploads/u1/2026/01/missing.png")
	require.True(t, apperrors.IsCode(err, "not_found"))
}

func TestRemove(t *testing.T) {
	svc := media.NewService(media.Config{}, mediastore.NewMemoryStorage())

	obj, err := svc.UploadDataURI(context.Background(), "u1", dataURI("image/gif", []byte("gif")))
	require.NoError(t, err)
	require.NoError(t, svc.Remove(context.Background(), obj.Key))

	_, _, err = svc.Fetch(context.Background(), obj.Key)
	require.True(t, apperrors.IsCode(err, "not_found"))
}
