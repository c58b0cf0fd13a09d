package cloudinary

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
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/olegsm/talkie-server/internal/mediaengine"
	"github.com/olegsm/talkie-server/internal/store"
)

const defaultUploadBase = "https://api.cloudinary.com/v1_1"

// Engine implements mediaengine.Engine using Cloudinary signed uploads.
type Engine struct {
	cloudName string
	apiKey    string
	apiSecret string
	baseURL   string
	http      *http.Client
}

// New creates a new Cloudinary engine. baseURL falls back to the public
// Cloudinary API when empty.
func New(cloudName, apiKey, apiSecret, baseURL string) *Engine {
	if baseURL == "" {
		baseURL = defaultUploadBase
	}
	return &Engine{
		cloudName: cloudName,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: 30 * time.Second},
	}
}

type uploadResponse struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
}

// Upload stores each file under a generated public ID and returns the
// resulting references in input order.
func (e *Engine) Upload(ctx context.Context, files []mediaengine.File) ([]store.Attachment, error) {
	attachments := make([]store.Attachment, 0, len(files))
	for _, f := range files {
		att, err := e.uploadOne(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("upload %q: %w", f.Name, err)
		}
		attachments = append(attachments, att)
	}
	return attachments, nil
}

func (e *Engine) uploadOne(ctx context.Context, f mediaengine.File) (store.Attachment, error) {
	publicID := uuid.NewString()
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	fields := map[string]string{
		"api_key":   e.apiKey,
		"public_id": publicID,
		"timestamp": timestamp,
		"signature": e.sign(publicID, timestamp),
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return store.Attachment{}, fmt.Errorf("write field %s: %w", key, err)
		}
	}

	part, err := writer.CreateFormFile("file", f.Name)
	if err != nil {
		return store.Attachment{}, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(f.Data); err != nil {
		return store.Attachment{}, fmt.Errorf("write file data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return store.Attachment{}, fmt.Errorf("close multipart writer: %w", err)
	}

	url := fmt.Sprintf("%s/%s/auto/upload", e.baseURL, e.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return store.Attachment{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := e.http.Do(req)
	if err != nil {
		return store.Attachment{}, fmt.Errorf("call upload endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return store.Attachment{}, fmt.Errorf("upload endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var decoded uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return store.Attachment{}, fmt.Errorf("decode response: %w", err)
	}

	return store.Attachment{PublicID: decoded.PublicID, URL: decoded.SecureURL}, nil
}

// sign produces the Cloudinary request signature: SHA-1 over the sorted
// upload parameters concatenated with the API secret.
func (e *Engine) sign(publicID, timestamp string) string {
	payload := fmt.Sprintf("public_id=%s&timestamp=%s%s", publicID, timestamp, e.apiSecret)
	sum := sha1.Sum([]byte(payload))
	return hex.EncodeToString(sum[:])
}
