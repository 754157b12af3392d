package detect

import (
	"context"

	"github.com/VyankateshKulkarni13/meetborg/client"
)

// Result is a normalized platform classification for a meeting URL.
type Result struct {
	Platform    client.Platform
	MeetingCode *string
	Valid       bool
	Message     string
}

// Classifier resolves a URL to a platform classification.
type Classifier interface {
	Classify(ctx context.Context, url string) (*Result, error)
}

// ClientClassifier classifies URLs through the backend detect endpoint.
type ClientClassifier struct {
	api *client.Client
}

// NewClientClassifier returns a Classifier backed by api.
func NewClientClassifier(api *client.Client) *ClientClassifier {
	return &ClientClassifier{api: api}
}

// Classify calls the backend detect-platform endpoint and normalizes the
// response. The endpoint is unauthenticated, so this works before login.
func (c *ClientClassifier) Classify(ctx context.Context, url string) (*Result, error) {
	det, err := c.api.DetectPlatform(ctx, url)
	if err != nil {
		return nil, err
	}
	return &Result{
		Platform:    det.Platform,
		MeetingCode: det.MeetingCode,
		Valid:       det.IsValid,
		Message:     det.Message,
	}, nil
}
