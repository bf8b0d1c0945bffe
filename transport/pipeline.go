package transport

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	interrors "github.com/jrsteele09/go-lms-client/internal/errors"
	"github.com/jrsteele09/go-lms-client/token"
)

// HeaderRequestID is attached to every outbound call for request correlation.
const HeaderRequestID = "X-Request-ID"

// refreshKey is the singleflight key: at most one refresh is in flight at a
// time, and every 401 that arrives meanwhile awaits that same operation.
const refreshKey = "refresh"

// RefreshFunc exchanges a refresh token for a new access token. It must reach
// the backend directly rather than through the pipeline, or a rejected
// refresh token would recurse into another refresh.
type RefreshFunc func(ctx context.Context, refreshToken string) (string, error)

// Pipeline is an http.RoundTripper that every call to the backend passes
// through exactly once. Outbound, it attaches the stored access token as a
// bearer credential. Inbound, a 401 triggers a single coalesced token refresh
// followed by one replay of the original request; a second 401 propagates to
// the caller unchanged. A failed refresh is unrecoverable: the store is
// cleared and the session-expired hook fires.
type Pipeline struct {
	base             http.RoundTripper
	store            token.Store
	refresh          RefreshFunc
	backendHost      string
	group            singleflight.Group
	onSessionExpired func()
	logger           zerolog.Logger
}

// PipelineOption defines a function type to modify the Pipeline instance.
type PipelineOption func(*Pipeline)

// WithBaseTransport sets the underlying transport (defaults to
// http.DefaultTransport).
func WithBaseTransport(rt http.RoundTripper) PipelineOption {
	return func(p *Pipeline) {
		p.base = rt
	}
}

// WithOnSessionExpired sets the hook invoked when a refresh fails and the
// session must be torn down. The hook is responsible for destroying the
// session state and navigating to the login entry point; it may be invoked
// more than once and must be idempotent.
func WithOnSessionExpired(hook func()) PipelineOption {
	return func(p *Pipeline) {
		p.onSessionExpired = hook
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(logger zerolog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New initializes a Pipeline for the backend at baseURL.
func New(baseURL string, store token.Store, refresh RefreshFunc, options ...PipelineOption) (*Pipeline, error) {
	if store == nil {
		return nil, errors.New("[transport.New] store is required")
	}
	if refresh == nil {
		return nil, errors.New("[transport.New] refresh func is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "[transport.New] invalid base URL")
	}

	pipeline := &Pipeline{
		base:        http.DefaultTransport,
		store:       store,
		refresh:     refresh,
		backendHost: u.Host,
		logger:      zerolog.Nop(),
	}

	for _, opt := range options {
		opt(pipeline)
	}

	return pipeline, nil
}

// Client returns an http.Client routed through the pipeline.
func (p *Pipeline) Client() *http.Client {
	return &http.Client{Transport: p}
}

// RoundTrip implements http.RoundTripper.
func (p *Pipeline) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	if out.Header.Get(HeaderRequestID) == "" {
		out.Header.Set(HeaderRequestID, uuid.New().String())
	}
	if pair, ok := p.store.Get(); ok && pair.AccessToken != "" && p.attachable(out.URL, pair) {
		out.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	}

	resp, err := p.base.RoundTrip(out)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	if retryCount(req.Context()) > 0 {
		// Already replayed once with a fresh credential; no further retries.
		return resp, nil
	}

	pair, ok := p.store.Get()
	if !ok || pair.RefreshToken == "" {
		return resp, nil
	}

	retry := req.Clone(withRetry(req.Context()))
	if req.Body != nil {
		if req.GetBody == nil {
			p.logger.Debug().Err(interrors.ErrBodyNotReplayable).
				Str("path", req.URL.Path).Msg("propagating 401")
			return resp, nil
		}
		body, bodyErr := req.GetBody()
		if bodyErr != nil {
			p.logger.Debug().Err(bodyErr).Str("path", req.URL.Path).Msg("propagating 401")
			return resp, nil
		}
		retry.Body = body
	}

	if _, refreshErr := p.refreshAccessToken(req.Context(), pair); refreshErr != nil {
		p.logger.Warn().Err(refreshErr).Msg("session torn down")
		p.store.Clear()
		if p.onSessionExpired != nil {
			p.onSessionExpired()
		}
		return resp, nil
	}

	drain(resp)
	return p.RoundTrip(retry)
}

// refreshAccessToken performs the refresh call, coalescing concurrent callers
// onto a single in-flight operation. Two independent requests hitting 401 at
// the same time would otherwise race two refresh calls and invalidate each
// other's freshly issued tokens.
func (p *Pipeline) refreshAccessToken(ctx context.Context, pair token.Pair) (string, error) {
	access, err, _ := p.group.Do(refreshKey, func() (interface{}, error) {
		// The outcome is shared between callers, so it must not die with any
		// single caller's cancellation.
		newAccess, refreshErr := p.refresh(context.WithoutCancel(ctx), pair.RefreshToken)
		if refreshErr != nil {
			return "", errors.Wrap(refreshErr, interrors.ErrRefreshFailed.Error())
		}
		pair.AccessToken = newAccess
		p.store.Set(pair)
		return newAccess, nil
	})
	if err != nil {
		return "", err
	}
	return access.(string), nil
}

// attachable enforces the pair's transmission attributes: a Secure pair never
// travels over plaintext, and a same-site pair only to the backend host.
func (p *Pipeline) attachable(u *url.URL, pair token.Pair) bool {
	if pair.Secure && u.Scheme != "https" {
		return false
	}
	if pair.SameSiteStrict && u.Host != p.backendHost {
		return false
	}
	return true
}

type retryCountKey struct{}

// withRetry returns a context whose request descriptor carries one more
// replay than the parent. The counter lives on the context rather than as
// hidden mutable state on the request object.
func withRetry(ctx context.Context) context.Context {
	return context.WithValue(ctx, retryCountKey{}, retryCount(ctx)+1)
}

func retryCount(ctx context.Context) int {
	count, _ := ctx.Value(retryCountKey{}).(int)
	return count
}

func drain(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}
