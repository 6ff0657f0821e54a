package collage

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"happythings/internal/auth"
	"happythings/internal/clock"
)

type UploadResult struct {
	StorageID string `json:"storageId"`
	URL       string `json:"url"`
}

type uploadBody struct {
	ImageData  string `json:"imageData"`
	Prompt     string `json:"prompt"`
	ThingCount int    `json:"thingCount"`
}

// HTTPUploader posts images to the server's /storeImage endpoint, signing
// each request with a fresh upload token.
type HTTPUploader struct {
	baseURL  string
	secret   []byte
	tokenTTL time.Duration
	client   *http.Client
	clock    clock.Clock
}

func NewHTTPUploader(baseURL string, secret []byte, tokenTTL time.Duration, client *http.Client, clk clock.Clock) *HTTPUploader {
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}
	return &HTTPUploader{
		baseURL:  strings.TrimRight(baseURL, "/"),
		secret:   secret,
		tokenTTL: tokenTTL,
		client:   client,
		clock:    clk,
	}
}

func (u *HTTPUploader) Upload(ctx context.Context, weekStart string, image []byte, prompt string, thingCount int) (*UploadResult, error) {
	token, err := auth.IssueUploadToken(u.secret, u.tokenTTL, u.clock.Now())
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(uploadBody{
		ImageData:  base64.StdEncoding.EncodeToString(image),
		Prompt:     prompt,
		ThingCount: thingCount,
	})
	if err != nil {
		return nil, err
	}

	endpoint := u.baseURL + "/storeImage?weekStart=" + url.QueryEscape(weekStart)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("store image: %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}
	var out UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode store response: %w", err)
	}
	return &out, nil
}
