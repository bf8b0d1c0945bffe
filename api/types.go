package api

import (
	"fmt"
	"time"

	interrors "github.com/jrsteele09/go-lms-client/internal/errors"
	"github.com/jrsteele09/go-lms-client/users"
)

// LoginResponse is returned from the login endpoint.
// Access is the short-lived JWT attached as a bearer credential; Refresh is
// the long-lived opaque token used solely to mint new access tokens.
type LoginResponse struct {
	Access  string     `json:"access"`
	Refresh string     `json:"refresh"`
	User    users.User `json:"user"`
}

// MessageResponse is the generic `{message}` envelope the backend uses for
// registration, password reset, and deletions.
type MessageResponse struct {
	Message string `json:"message"`
}

// Course is a course as listed by the backend.
type Course struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"createdAt"`
	CreatedBy   users.User `json:"createdBy"`
	PDFCount    int        `json:"pdfCount"`
}

// PDF describes an uploaded course document.
type PDF struct {
	ID           int64     `json:"id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	CourseID     int64     `json:"courseId"`
	UploadedAt   time.Time `json:"uploadedAt"`
	Size         int64     `json:"size"`
}

// SignedURL is a time-limited download link for a PDF.
type SignedURL struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Error is a non-2xx backend response. Message carries the backend's own
// `message` body when one was present; callers surfacing notifications prefer
// it over a generic fallback.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.StatusCode)
}

// Unwrap maps the status code onto the client's sentinel errors so callers
// can branch with errors.Is.
func (e *Error) Unwrap() error {
	switch e.StatusCode {
	case 401:
		return interrors.ErrUnauthorized
	case 403:
		return interrors.ErrForbidden
	case 404:
		return interrors.ErrNotFound
	default:
		return interrors.ErrBackend
	}
}
