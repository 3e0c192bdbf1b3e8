package detector

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/apex/log"

	"road-condition-service/models"
)

// Client handles communication with the damage detector service
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// DetectRequest represents the request to the detector service
type DetectRequest struct {
	Image    string `json:"image"`
	MimeType string `json:"mime_type"`
}

// DetectResponse represents the response from the detector service
type DetectResponse struct {
	Detections []models.Detection `json:"detections"`
	Status     string             `json:"status"`
}

// NewClient creates a new detector client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second, // model inference can be slow on large images
		},
	}
}

func (c *Client) SourceName() string {
	return "ssd-detector"
}

// Detect sends an image to the detector service and returns its detections.
func (c *Client) Detect(ctx context.Context, image []byte, mimeType string) ([]models.Detection, error) {
	request := DetectRequest{
		Image:    base64.StdEncoding.EncodeToString(image),
		MimeType: mimeType,
	}

	requestBody, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/detect", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	log.Infof("Sending image to detector service: %s, image size: %d bytes", url, len(image))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to detector service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("detector service returned status %d", resp.StatusCode)
	}

	var response DetectResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return response.Detections, nil
}
