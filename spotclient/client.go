// Package spotclient is a Go client for the SpotFinder services.
package spotclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"spotfinder/models"
	"strconv"
	"strings"
	"time"
)

var ErrNotLoggedIn = errors.New("not logged in")

// APIError is a non-2xx response from a service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

type Endpoints struct {
	Identity     string
	Catalogue    string
	Media        string
	Notification string
}

func DefaultEndpoints() Endpoints {
	return Endpoints{
		Identity:     "http://localhost:4001",
		Catalogue:    "http://localhost:4002",
		Media:        "http://localhost:4003",
		Notification: "http://localhost:4004",
	}
}

type Client struct {
	endpoints Endpoints
	http      *http.Client
	session   *Session
}

func New(endpoints Endpoints, session *Session, httpClient *http.Client) *Client {
	if session == nil {
		session = &Session{}
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{endpoints: endpoints, http: httpClient, session: session}
}

func (c *Client) Session() *Session {
	return c.session
}

// SpotInput is the body of spot create and update calls. Nil fields are
// omitted.
type SpotInput struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	SpotType    *string  `json:"spot_type,omitempty"`
	Tips        *string  `json:"tips,omitempty"`
	ImageURL    *string  `json:"image_url,omitempty"`
}

func (c *Client) Register(ctx context.Context, username, email, password string) (models.User, error) {
	var resp struct {
		User models.User `json:"user"`
	}
	err := c.do(ctx, http.MethodPost, c.endpoints.Identity+"/auth/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, &resp, false)
	return resp.User, err
}

// Login authenticates and stores the token and user in the session.
func (c *Client) Login(ctx context.Context, email, password string) (models.Profile, error) {
	var resp struct {
		Token string         `json:"token"`
		User  models.Profile `json:"user"`
	}
	err := c.do(ctx, http.MethodPost, c.endpoints.Identity+"/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &resp, false)
	if err != nil {
		return models.Profile{}, err
	}
	c.session.Set(resp.Token, resp.User)
	return resp.User, nil
}

func (c *Client) Logout() {
	c.session.Clear()
}

// Me refreshes the session user from the identity service.
func (c *Client) Me(ctx context.Context) (models.Profile, error) {
	var resp struct {
		User models.Profile `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, c.endpoints.Identity+"/auth/me", nil, &resp, true); err != nil {
		return models.Profile{}, err
	}
	c.session.Set(c.session.Token(), resp.User)
	return resp.User, nil
}

func (c *Client) PublicProfile(ctx context.Context, username string) (models.PublicProfile, error) {
	var p models.PublicProfile
	err := c.do(ctx, http.MethodGet, c.endpoints.Identity+"/auth/users/"+url.PathEscape(username), nil, &p, false)
	return p, err
}

func (c *Client) ListSpots(ctx context.Context) ([]models.SpotSummary, error) {
	var spots []models.SpotSummary
	err := c.do(ctx, http.MethodGet, c.endpoints.Catalogue+"/spots", nil, &spots, false)
	return spots, err
}

func (c *Client) GetSpot(ctx context.Context, id int64) (models.Spot, error) {
	var sp models.Spot
	err := c.do(ctx, http.MethodGet, c.spotURL(id), nil, &sp, false)
	return sp, err
}

func (c *Client) CreateSpot(ctx context.Context, in SpotInput) (models.Spot, error) {
	var sp models.Spot
	err := c.do(ctx, http.MethodPost, c.endpoints.Catalogue+"/spots", in, &sp, true)
	return sp, err
}

func (c *Client) UpdateSpot(ctx context.Context, id int64, in SpotInput) (models.Spot, error) {
	var sp models.Spot
	err := c.do(ctx, http.MethodPut, c.spotURL(id), in, &sp, true)
	return sp, err
}

func (c *Client) DeleteSpot(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, c.spotURL(id), nil, nil, true)
}

func (c *Client) spotURL(id int64) string {
	return c.endpoints.Catalogue + "/spots/" + strconv.FormatInt(id, 10)
}

// UploadImage sends an image for the spot as multipart form data.
func (c *Client) UploadImage(ctx context.Context, spotID int64, filename string, image io.Reader) (models.Media, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("spotId", strconv.FormatInt(spotID, 10)); err != nil {
		return models.Media{}, err
	}
	fw, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return models.Media{}, err
	}
	if _, err := io.Copy(fw, image); err != nil {
		return models.Media{}, fmt.Errorf("read image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return models.Media{}, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.endpoints.Media+"/media/upload", &buf, true)
	if err != nil {
		return models.Media{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var m models.Media
	err = c.send(req, &m)
	return m, err
}

func (c *Client) ListMedia(ctx context.Context, spotID int64) ([]models.Media, error) {
	var media []models.Media
	err := c.do(ctx, http.MethodGet, c.endpoints.Media+"/media/spot/"+strconv.FormatInt(spotID, 10), nil, &media, false)
	return media, err
}

func (c *Client) DeleteMedia(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, c.endpoints.Media+"/media/delete/"+strconv.FormatInt(id, 10), nil, nil, true)
}

// Notifications lists the signed-in user's notifications, newest first.
func (c *Client) Notifications(ctx context.Context) ([]models.Notification, error) {
	u, ok := c.session.User()
	if !ok {
		return nil, ErrNotLoggedIn
	}
	var list []models.Notification
	err := c.do(ctx, http.MethodGet, c.notificationURL(u.ID), nil, &list, false)
	return list, err
}

func (c *Client) UnreadCount(ctx context.Context) (int64, error) {
	u, ok := c.session.User()
	if !ok {
		return 0, ErrNotLoggedIn
	}
	var resp struct {
		Count int64 `json:"count"`
	}
	err := c.do(ctx, http.MethodGet, c.notificationURL(u.ID)+"/unread-count", nil, &resp, false)
	return resp.Count, err
}

func (c *Client) MarkRead(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPut, c.notificationURL(id)+"/read", nil, nil, false)
}

func (c *Client) notificationURL(id int64) string {
	return c.endpoints.Notification + "/notifications/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, method, url string, in, out any, authed bool) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := c.newRequest(ctx, method, url, body, authed)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, url string, body io.Reader, authed bool) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	if authed {
		token := c.session.Token()
		if token == "" {
			return nil, ErrNotLoggedIn
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) send(req *http.Request, out any) error {
	return sendJSON(c.http, req, out)
}

func sendJSON(hc *http.Client, req *http.Request, out any) error {
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var e struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(raw, &e) != nil || e.Error == "" {
			e.Error = strings.TrimSpace(string(raw))
		}
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
