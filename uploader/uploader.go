// Package uploader sends images to the Cloudinary unsigned-upload endpoint
// and hands back the durable URL. Files never touch local disk; posts store
// only the resulting URL.
package uploader

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrValidation marks a rejected file (wrong type or too large). It is
	// returned before any network call.
	ErrValidation = errors.New("invalid upload")
	// ErrUpload marks a failed transfer: the asset host rejected the file
	// or was unreachable. The caller must revert any preview state.
	ErrUpload = errors.New("upload failed")
)

// Config carries the asset host settings. All three values come from the
// environment; the upload preset and cloud name are account identifiers, not
// user secrets.
type Config struct {
	CloudName    string
	UploadPreset string
	// UploadURL overrides the derived Cloudinary endpoint; used by tests.
	UploadURL string
	// MaxBytes limits accepted file size. Zero means the 10MB default.
	MaxBytes int64
}

// File describes an upload candidate.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// Uploader validates image files and relays them to the asset host.
type Uploader struct {
	cfg    Config
	client *http.Client
}

// New builds an uploader. A nil client gets a 30s-timeout default.
func New(cfg Config, client *http.Client) *Uploader {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 10 << 20
	}
	if cfg.UploadURL == "" {
		cfg.UploadURL = fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/image/upload", cfg.CloudName)
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Uploader{cfg: cfg, client: client}
}

// MaxBytes reports the configured size limit.
func (u *Uploader) MaxBytes() int64 {
	return u.cfg.MaxBytes
}

// Validate applies the type and size checks without touching the network.
func (u *Uploader) Validate(f File) error {
	if !strings.HasPrefix(f.ContentType, "image/") {
		return fmt.Errorf("%w: please select an image file", ErrValidation)
	}
	if f.Size > u.cfg.MaxBytes {
		return fmt.Errorf("%w: file size must be less than %dMB", ErrValidation, u.cfg.MaxBytes>>20)
	}
	return nil
}

// Preview returns a data URL for immediate local display, independent of the
// upload finishing. The caller discards it if the upload later fails.
func Preview(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Upload validates the file and performs one multipart POST to the asset
// host, returning the durable URL. There is no retry; a failed upload needs
// the user to reselect the file.
func (u *Uploader) Upload(ctx context.Context, f File) (string, error) {
	if f.ContentType == "" {
		// Sniff when the browser sent no type; the prefix is replayed into
		// the request body.
		buf := make([]byte, 512)
		n, _ := io.ReadFull(f.Reader, buf)
		f.ContentType = http.DetectContentType(buf[:n])
		f.Reader = io.MultiReader(bytes.NewReader(buf[:n]), f.Reader)
	}
	if err := u.Validate(f); err != nil {
		return "", err
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile("file", f.Name)
		if err == nil {
			_, err = io.Copy(part, io.LimitReader(f.Reader, u.cfg.MaxBytes+1))
		}
		if err == nil {
			err = mw.WriteField("upload_preset", u.cfg.UploadPreset)
		}
		if err == nil {
			err = mw.WriteField("cloud_name", u.cfg.CloudName)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.cfg.UploadURL, pr)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: failed to upload image: %v", ErrUpload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: asset host returned %d: %s", ErrUpload, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var parsed struct {
		SecureURL string `json:"secure_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: malformed asset host response: %v", ErrUpload, err)
	}
	if parsed.SecureURL == "" {
		return "", fmt.Errorf("%w: asset host response missing secure_url", ErrUpload)
	}
	return parsed.SecureURL, nil
}
