package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-lms-client/users"
)

// Client is the typed surface over the backend REST API. All calls are
// expected to run through the request pipeline (pass its http.Client in), so
// credential attachment and the 401 refresh-and-replay behavior apply to
// every endpoint here without any per-endpoint handling.
type Client struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithClientLogger sets the client logger.
func WithClientLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a backend client rooted at baseURL.
func New(baseURL string, httpClient *http.Client, options ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("[api.New] base URL is required")
	}
	if httpClient == nil {
		return nil, errors.New("[api.New] http client is required")
	}

	client := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  zerolog.Nop(),
	}

	for _, opt := range options {
		opt(client)
	}

	return client, nil
}

// Login exchanges credentials for a token pair and the authenticated user.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var out LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login/", body, &out); err != nil {
		return nil, errors.Wrap(err, "[Client.Login]")
	}
	return &out, nil
}

// Register creates a new account. It does not authenticate the caller.
func (c *Client) Register(ctx context.Context, reg users.Registration) error {
	if err := c.do(ctx, http.MethodPost, "/auth/register/", reg, nil); err != nil {
		return errors.Wrap(err, "[Client.Register]")
	}
	return nil
}

// Me resolves the identity behind the stored access token.
func (c *Client) Me(ctx context.Context) (*users.User, error) {
	var out users.User
	if err := c.do(ctx, http.MethodGet, "/auth/me/", nil, &out); err != nil {
		return nil, errors.Wrap(err, "[Client.Me]")
	}
	return &out, nil
}

// ForgotPassword requests a password-reset email.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	if err := c.do(ctx, http.MethodPost, "/auth/forgot-password/", body, nil); err != nil {
		return errors.Wrap(err, "[Client.ForgotPassword]")
	}
	return nil
}

// Courses lists all courses visible to the authenticated user.
func (c *Client) Courses(ctx context.Context) ([]Course, error) {
	var out []Course
	if err := c.do(ctx, http.MethodGet, "/courses/", nil, &out); err != nil {
		return nil, errors.Wrap(err, "[Client.Courses]")
	}
	return out, nil
}

// CreateCourse creates a course. Admin only.
func (c *Client) CreateCourse(ctx context.Context, title, description string) (*Course, error) {
	body := map[string]string{"title": title, "description": description}
	var out Course
	if err := c.do(ctx, http.MethodPost, "/courses/", body, &out); err != nil {
		return nil, errors.Wrap(err, "[Client.CreateCourse]")
	}
	return &out, nil
}

// CoursePDFs lists the documents attached to a course.
func (c *Client) CoursePDFs(ctx context.Context, courseID int64) ([]PDF, error) {
	var out []PDF
	path := fmt.Sprintf("/courses/%d/pdfs/", courseID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, errors.Wrap(err, "[Client.CoursePDFs]")
	}
	return out, nil
}

// PDFSignedURL fetches a time-limited download link for a PDF.
func (c *Client) PDFSignedURL(ctx context.Context, pdfID int64) (*SignedURL, error) {
	var out SignedURL
	path := fmt.Sprintf("/pdfs/%d/signed-url/", pdfID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, errors.Wrap(err, "[Client.PDFSignedURL]")
	}
	return &out, nil
}

// DeletePDF removes a PDF. Admin only.
func (c *Client) DeletePDF(ctx context.Context, pdfID int64) error {
	path := fmt.Sprintf("/pdfs/%d/", pdfID)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return errors.Wrap(err, "[Client.DeletePDF]")
	}
	return nil
}

// do issues a JSON request and decodes the response into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "marshal request body")
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "send request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode response body")
	}
	return nil
}

// decodeError turns a non-2xx response into an *Error, preserving the
// backend's message body when present.
func decodeError(resp *http.Response) error {
	apiErr := &Error{StatusCode: resp.StatusCode}
	var msg MessageResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&msg); err == nil {
		apiErr.Message = msg.Message
	}
	return apiErr
}
