package sigv4

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Transport is an http.RoundTripper that signs every outgoing request with
// SigV4 before delegating to the base transport. Credentials are resolved
// per request from the configured provider; a resolution or signing failure
// short-circuits the round trip without touching the network.
type Transport struct {
	// Credentials resolves the signing credentials for each request.
	Credentials CredentialsProvider

	// Region and Service scope the derived signing key.
	Region  string
	Service string

	// Base is the underlying transport. http.DefaultTransport when nil.
	Base http.RoundTripper

	// Now supplies the signing timestamp. time.Now when nil.
	Now func() time.Time
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())

	payloadHash := EmptyPayloadHash
	if req.Body != nil && req.Body != http.NoBody {
		body, err := io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read request body: %w", err)
		}
		sum := sha256.Sum256(body)
		payloadHash = hex.EncodeToString(sum[:])
		req.Body = io.NopCloser(bytes.NewReader(body))
		req.ContentLength = int64(len(body))
	}

	creds, err := t.Credentials.Retrieve(req.Context())
	if err != nil {
		return nil, err
	}

	req.Header.Set(ContentSHAHeader, payloadHash)
	if creds.SessionToken != "" {
		req.Header.Set(SecurityTokenHeader, creds.SessionToken)
	}

	now := time.Now
	if t.Now != nil {
		now = t.Now
	}
	if err := Sign(req, creds, t.Region, t.Service, payloadHash, now()); err != nil {
		return nil, err
	}

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}
