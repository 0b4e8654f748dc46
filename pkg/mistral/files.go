package mistral

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
)

// SignedURLExpiryHours is how long a signed file URL stays valid.
const SignedURLExpiryHours = 24

type fileObject struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Purpose  string `json:"purpose"`
}

type signedURL struct {
	URL string `json:"url"`
}

// Upload sends the file at path for OCR and returns a signed URL that chat
// requests can reference.
func (c *Client) Upload(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	id, err := c.UploadFile(ctx, filepath.Base(path), f)
	if err != nil {
		return "", err
	}
	return c.SignedURL(ctx, id)
}

// UploadFile uploads r under name with purpose "ocr" and returns the file ID.
func (c *Client) UploadFile(ctx context.Context, name string, r io.Reader) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("purpose", "ocr"); err != nil {
		return "", err
	}
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/v1/files", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var obj fileObject
	if err := c.do(req, &obj); err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	if obj.ID == "" {
		return "", fmt.Errorf("upload %s: response without file id", name)
	}
	return obj.ID, nil
}

// SignedURL returns a temporary download URL for an uploaded file.
func (c *Client) SignedURL(ctx context.Context, fileID string) (string, error) {
	path := fmt.Sprintf("/v1/files/%s/url?expiry=%d", url.PathEscape(fileID), SignedURLExpiryHours)
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return "", err
	}

	var out signedURL
	if err := c.do(req, &out); err != nil {
		return "", fmt.Errorf("signed url for %s: %w", fileID, err)
	}
	if out.URL == "" {
		return "", fmt.Errorf("signed url for %s: empty url", fileID)
	}
	return out.URL, nil
}
