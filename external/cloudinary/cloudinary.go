package cloudinary

import (
	"bytes"
	"context"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"
	"time"
)

// Client uploads avatar images to Cloudinary and builds the transformed
// delivery URL (250x250 fill crop).
type Client struct {
	cloudName string
	apiKey    string
	apiSecret string
	client    *http.Client
	baseURL   string
}

func New() (*Client, error) {
	name := os.Getenv("CLOUDINARY_NAME")
	key := os.Getenv("CLOUDINARY_API_KEY")
	secret := os.Getenv("CLOUDINARY_API_SECRET")
	if name == "" || key == "" || secret == "" {
		return nil, errors.New("CLOUDINARY_NAME, CLOUDINARY_API_KEY or CLOUDINARY_API_SECRET not set")
	}

	return &Client{
		cloudName: name,
		apiKey:    key,
		apiSecret: secret,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: "https://api.cloudinary.com",
	}, nil
}

// publicIDFor derives a stable asset name from the user's email so that a
// re-upload overwrites the previous avatar.
func publicIDFor(email string) string {
	sum := sha256.Sum256([]byte(email))
	return "hw14/" + hex.EncodeToString(sum[:])[:12]
}

// sign produces the Cloudinary request signature: SHA-1 over the
// alphabetically ordered params with the API secret appended.
func (c *Client) sign(params string) string {
	sum := sha1.Sum([]byte(params + c.apiSecret))
	return hex.EncodeToString(sum[:])
}

type uploadResponse struct {
	PublicID  string `json:"public_id"`
	Version   int64  `json:"version"`
	SecureURL string `json:"secure_url"`
}

// Upload pushes the file under the email-derived public id, overwriting any
// previous version, and returns the 250x250 fill-cropped URL.
func (c *Client) Upload(ctx context.Context, email string, file io.Reader) (string, error) {
	publicID := publicIDFor(email)
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	signature := c.sign("overwrite=true&public_id=" + publicID + "&timestamp=" + timestamp)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	fields := map[string]string{
		"api_key":   c.apiKey,
		"timestamp": timestamp,
		"signature": signature,
		"public_id": publicID,
		"overwrite": "true",
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return "", fmt.Errorf("write upload field %q: %w", k, err)
		}
	}

	part, err := w.CreateFormFile("file", "avatar")
	if err != nil {
		return "", fmt.Errorf("create upload part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("copy avatar payload: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finish upload body: %w", err)
	}

	url := fmt.Sprintf("%s/v1_1/%s/image/upload", c.baseURL, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("upload avatar: cloudinary status %d: %s", resp.StatusCode, raw)
	}

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}

	return c.avatarURL(publicID, out.Version), nil
}

// avatarURL builds the delivery URL pinned to the uploaded version.
func (c *Client) avatarURL(publicID string, version int64) string {
	return fmt.Sprintf("https://res.cloudinary.com/%s/image/upload/c_fill,h_250,w_250/v%d/%s",
		c.cloudName, version, publicID)
}
