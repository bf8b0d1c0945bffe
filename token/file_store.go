package token

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

var _ Store = (*FileStore)(nil)

// FileStore persists the token pair as a JSON file with owner-only
// permissions. It is the CLI equivalent of the browser cookie jar: expiries
// are stamped on write and honored on read, and all storage failures degrade
// silently to an absent pair.
type FileStore struct {
	path           string
	secure         bool
	sameSiteStrict bool
	logger         zerolog.Logger
	lock           sync.Mutex
}

// FileStoreOption modifies a FileStore instance.
type FileStoreOption func(*FileStore)

// WithTransmissionAttributes sets the attributes stamped onto every stored
// pair. Production configuration sets both; development relaxes them.
func WithTransmissionAttributes(secure, sameSiteStrict bool) FileStoreOption {
	return func(fs *FileStore) {
		fs.secure = secure
		fs.sameSiteStrict = sameSiteStrict
	}
}

// WithLogger sets the logger used for debug output on storage failures.
func WithLogger(logger zerolog.Logger) FileStoreOption {
	return func(fs *FileStore) {
		fs.logger = logger
	}
}

// NewFileStore creates a store backed by the file at path.
func NewFileStore(path string, options ...FileStoreOption) *FileStore {
	fs := &FileStore{
		path:   path,
		logger: zerolog.Nop(),
	}
	for _, opt := range options {
		opt(fs)
	}
	return fs
}

// Set persists the pair. The access expiry is always re-derived because the
// access token is the part that changes on refresh; the refresh expiry is
// stamped only when absent, so refreshing never extends the original window.
func (fs *FileStore) Set(pair Pair) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	now := NowTimeFunc()
	pair.AccessExpiry = accessExpiryFrom(pair.AccessToken, now)
	if pair.RefreshExpiry.IsZero() {
		pair.RefreshExpiry = now.Add(RefreshTokenLifetime)
	}
	pair.Secure = fs.secure
	pair.SameSiteStrict = fs.sameSiteStrict

	data, err := json.Marshal(pair)
	if err != nil {
		fs.logger.Debug().Err(err).Msg("token store: marshal failed")
		return
	}
	if err := os.MkdirAll(filepath.Dir(fs.path), 0o700); err != nil {
		fs.logger.Debug().Err(err).Msg("token store: unavailable")
		return
	}
	if err := os.WriteFile(fs.path, data, 0o600); err != nil {
		fs.logger.Debug().Err(err).Msg("token store: write failed")
	}
}

// Get returns the stored pair, applying expiries.
func (fs *FileStore) Get() (Pair, bool) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	data, err := os.ReadFile(fs.path)
	if err != nil {
		return Pair{}, false
	}
	var pair Pair
	if err := json.Unmarshal(data, &pair); err != nil {
		fs.logger.Debug().Err(err).Msg("token store: corrupt file, discarding")
		_ = os.Remove(fs.path)
		return Pair{}, false
	}

	now := NowTimeFunc()
	if !pair.RefreshExpiry.IsZero() && now.After(pair.RefreshExpiry) {
		_ = os.Remove(fs.path)
		return Pair{}, false
	}
	if !pair.AccessExpiry.IsZero() && now.After(pair.AccessExpiry) {
		pair.AccessToken = ""
	}
	if pair.AccessToken == "" && pair.RefreshToken == "" {
		return Pair{}, false
	}
	return pair, true
}

// Clear removes both tokens unconditionally.
func (fs *FileStore) Clear() {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	_ = os.Remove(fs.path)
}
