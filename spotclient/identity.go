package spotclient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// IdentityClient makes the service-to-service calls into the identity
// service.
type IdentityClient struct {
	baseURL string
	key     string
	http    *http.Client
}

func NewIdentityClient(baseURL, serviceKey string, timeout time.Duration) *IdentityClient {
	return &IdentityClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     serviceKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// AddPoints credits amount points to the user.
func (c *IdentityClient) AddPoints(ctx context.Context, userID int64, amount int) error {
	raw, err := json.Marshal(map[string]any{"userId": userID, "amount": amount})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/auth/add-points", bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Key", c.key)

	return sendJSON(c.http, req, nil)
}
