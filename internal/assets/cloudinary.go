package assets

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// CloudinaryConfig carries the credentials for signed uploads.
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

// Validate checks that all credential fields are present.
func (c CloudinaryConfig) Validate() error {
	if c.CloudName == "" || c.APIKey == "" || c.APISecret == "" {
		return errors.New("cloudinary credentials are incomplete")
	}
	return nil
}

// Cloudinary uploads images through the Cloudinary signed upload API.
type Cloudinary struct {
	cfg        CloudinaryConfig
	httpClient *http.Client
	now        func() time.Time
	uploadURL  string
}

// CloudinaryOption configures a Cloudinary uploader.
type CloudinaryOption func(*Cloudinary)

// WithCloudinaryHTTPClient overrides the HTTP client.
func WithCloudinaryHTTPClient(hc *http.Client) CloudinaryOption {
	return func(c *Cloudinary) { c.httpClient = hc }
}

// WithCloudinaryUploadURL overrides the upload endpoint, for tests.
func WithCloudinaryUploadURL(u string) CloudinaryOption {
	return func(c *Cloudinary) { c.uploadURL = u }
}

// WithCloudinaryNow substitutes the timestamp source used in signatures.
func WithCloudinaryNow(now func() time.Time) CloudinaryOption {
	return func(c *Cloudinary) { c.now = now }
}

// NewCloudinary creates a signed uploader for the configured cloud.
func NewCloudinary(cfg CloudinaryConfig, opts ...CloudinaryOption) (*Cloudinary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Cloudinary{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		now:        time.Now,
		uploadURL:  fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/image/upload", cfg.CloudName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Upload hosts the file and returns its secure URL.
func (c *Cloudinary) Upload(ctx context.Context, path string) (string, error) {
	return c.upload(ctx, path, nil)
}

// UploadPreservingAlpha hosts the file as PNG so transparency survives
// the trip through the CDN.
func (c *Cloudinary) UploadPreservingAlpha(ctx context.Context, path string) (string, error) {
	return c.upload(ctx, path, map[string]string{"format": "png"})
}

func (c *Cloudinary) upload(ctx context.Context, path string, extra map[string]string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	params := map[string]string{
		"timestamp": strconv.FormatInt(c.now().Unix(), 10),
		"public_id": publicID(path),
	}
	for k, v := range extra {
		params[k] = v
	}
	signature := signParams(params, c.cfg.APISecret)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range params {
		if err := w.WriteField(k, v); err != nil {
			return "", errors.Wrapf(err, "write field %s", k)
		}
	}
	if err := w.WriteField("api_key", c.cfg.APIKey); err != nil {
		return "", errors.Wrap(err, "write api key")
	}
	if err := w.WriteField("signature", signature); err != nil {
		return "", errors.Wrap(err, "write signature")
	}
	part, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", errors.Wrap(err, "create file part")
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", errors.Wrapf(err, "copy %s", path)
	}
	if err := w.Close(); err != nil {
		return "", errors.Wrap(err, "finalize multipart body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, &buf)
	if err != nil {
		return "", errors.Wrap(err, "create upload request")
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrapf(err, "upload %s", path)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "read upload response")
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("upload %s: status %d: %s", path, resp.StatusCode, truncate(body, 200))
	}

	var result struct {
		SecureURL string `json:"secure_url"`
		URL       string `json:"url"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", errors.Wrap(err, "decode upload response")
	}
	url := result.SecureURL
	if url == "" {
		url = result.URL
	}
	if url == "" {
		return "", errors.Errorf("upload %s: response carries no url", path)
	}

	zctx.From(ctx).Debug("Uploaded asset",
		zap.String("path", path),
		zap.String("url", url),
	)
	return url, nil
}

// signParams builds the SHA-1 signature over the sorted parameter set,
// per Cloudinary's signed upload scheme.
func signParams(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}
	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + secret))
	return hex.EncodeToString(sum[:])
}

// publicID derives a stable asset id from the file name, without its
// extension.
func publicID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
