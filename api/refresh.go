package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"github.com/jrsteele09/go-lms-client/transport"
)

// NewRefreshFunc returns the pipeline's refresh operation. It deliberately
// uses a bare http.Client instead of the pipeline: a rejected refresh token
// must surface as a failure, not trigger another refresh.
func NewRefreshFunc(baseURL string, httpClient *http.Client) transport.RefreshFunc {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	url := trimBase(baseURL) + "/auth/refresh/"

	return func(ctx context.Context, refreshToken string) (string, error) {
		payload, err := json.Marshal(map[string]string{"refresh": refreshToken})
		if err != nil {
			return "", errors.Wrap(err, "[RefreshFunc] marshal")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return "", errors.Wrap(err, "[RefreshFunc] build request")
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := httpClient.Do(req)
		if err != nil {
			return "", errors.Wrap(err, "[RefreshFunc] send request")
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return "", decodeError(resp)
		}

		var out struct {
			Access string `json:"access"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return "", errors.Wrap(err, "[RefreshFunc] decode response")
		}
		if out.Access == "" {
			return "", errors.New("[RefreshFunc] backend returned no access token")
		}
		return out.Access, nil
	}
}

func trimBase(baseURL string) string {
	for len(baseURL) > 0 && baseURL[len(baseURL)-1] == '/' {
		baseURL = baseURL[:len(baseURL)-1]
	}
	return baseURL
}
