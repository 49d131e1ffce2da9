package storage

import (
	"fmt"
	"net/url"
	"time"

	"go.uber.org/fx"

	cfgpkg "github.com/fatflowers/shopdrop/pkg/config"
)

// Signer issues time-boxed URLs against the object store holding product
// files. The real implementation lives with the storage/CDN collaborator;
// this service only decides whether access is granted.
type Signer interface {
	// SignedDownloadURL returns a retrieval URL for an already stored object.
	SignedDownloadURL(filePath string, ttl time.Duration) string
	// SignedUploadURL returns a pair of (upload URL, final object URL) for a
	// pending upload.
	SignedUploadURL(fileName string) (uploadURL string, fileURL string)
}

// StubSigner fabricates URLs against the configured storage base. It stands in
// for the CDN signer during development and tests.
type StubSigner struct {
	baseURL string
}

func NewStubSigner(cfg *cfgpkg.Config) Signer {
	return &StubSigner{baseURL: cfg.Download.StorageBaseURL}
}

func (s *StubSigner) SignedDownloadURL(filePath string, ttl time.Duration) string {
	return fmt.Sprintf("%s/%s?token=stub&expires=%d", s.baseURL, url.PathEscape(filePath), time.Now().Add(ttl).Unix())
}

func (s *StubSigner) SignedUploadURL(fileName string) (string, string) {
	fileURL := fmt.Sprintf("%s/%s", s.baseURL, url.PathEscape(fileName))
	return fileURL + "?signature=stub", fileURL
}

var Module = fx.Options(
	fx.Provide(NewStubSigner),
)
