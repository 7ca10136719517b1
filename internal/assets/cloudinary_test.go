package assets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImageFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "skull.png")
	require.NoError(t, os.WriteFile(path, []byte("not really a png"), 0o644))
	return path
}

func TestCloudinaryUpload(t *testing.T) {
	var gotParams map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotParams = map[string]string{}
		for k, v := range r.MultipartForm.Value {
			gotParams[k] = v[0]
		}
		_, _ = w.Write([]byte(`{"secure_url":"https://res.cloudinary.test/skull.png"}`))
	}))
	defer srv.Close()

	c, err := NewCloudinary(CloudinaryConfig{
		CloudName: "demo",
		APIKey:    "key",
		APISecret: "secret",
	},
		WithCloudinaryUploadURL(srv.URL),
		WithCloudinaryNow(func() time.Time { return time.Unix(1700000000, 0) }),
	)
	require.NoError(t, err)

	url, err := c.Upload(context.Background(), testImageFile(t))
	require.NoError(t, err)

	assert.Equal(t, "https://res.cloudinary.test/skull.png", url)
	assert.Equal(t, "key", gotParams["api_key"])
	assert.Equal(t, "skull", gotParams["public_id"])
	assert.Equal(t, "1700000000", gotParams["timestamp"])
	assert.Equal(t,
		signParams(map[string]string{"public_id": "skull", "timestamp": "1700000000"}, "secret"),
		gotParams["signature"],
	)
}

func TestCloudinaryUploadErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid signature"}}`))
	}))
	defer srv.Close()

	c, err := NewCloudinary(CloudinaryConfig{CloudName: "demo", APIKey: "key", APISecret: "bad"},
		WithCloudinaryUploadURL(srv.URL))
	require.NoError(t, err)

	_, err = c.Upload(context.Background(), testImageFile(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestCloudinaryRequiresCredentials(t *testing.T) {
	_, err := NewCloudinary(CloudinaryConfig{CloudName: "demo"})
	assert.Error(t, err)
}

func TestSignParamsIsOrderIndependent(t *testing.T) {
	a := signParams(map[string]string{"timestamp": "1", "public_id": "x"}, "s")
	b := signParams(map[string]string{"public_id": "x", "timestamp": "1"}, "s")
	assert.Equal(t, a, b)
}
