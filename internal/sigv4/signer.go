package sigv4

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	// EmptyPayloadHash is the hex encoded SHA-256 hash of zero bytes. It is
	// the payload hash for every request without a body.
	EmptyPayloadHash = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

	// SigningAlgorithm is the SigV4 algorithm identifier.
	SigningAlgorithm = "AWS4-HMAC-SHA256"

	// AmzDateHeader carries the request timestamp in basic ISO8601 format.
	AmzDateHeader = "X-Amz-Date"

	// SecurityTokenHeader carries the session token for temporary credentials.
	// It must be set on the request before signing so that it is covered by
	// the signature.
	SecurityTokenHeader = "X-Amz-Security-Token"

	// ContentSHAHeader carries the hex encoded SHA-256 hash of the body.
	ContentSHAHeader = "X-Amz-Content-Sha256"

	timeFormat      = "20060102T150405Z"
	shortTimeFormat = "20060102"
	terminator      = "aws4_request"
)

// unsignableHeaders are excluded from the canonical request.
var unsignableHeaders = map[string]struct{}{
	"authorization":     {},
	"user-agent":        {},
	"x-amzn-trace-id":   {},
	"expect":            {},
	"transfer-encoding": {},
}

// Sign computes the SigV4 signature for req and sets the X-Amz-Date and
// Authorization headers in place. payloadHash is the hex encoded SHA-256 of
// the request body; use EmptyPayloadHash for requests without one. Every
// header present on the request at call time, other than the unsignable set,
// is included in the signed-header list.
func Sign(req *http.Request, creds Credentials, region, service, payloadHash string, signingTime time.Time) error {
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" || region == "" {
		return ErrCredentialsMissing
	}

	t := signingTime.UTC()
	amzDate := t.Format(timeFormat)
	req.Header.Set(AmzDateHeader, amzDate)

	scope := strings.Join([]string{t.Format(shortTimeFormat), region, service, terminator}, "/")

	canonicalHeaders, signedHeaders := canonicalizeHeaders(req)
	canonicalRequest := strings.Join([]string{
		strings.ToUpper(req.Method),
		canonicalURIPath(req),
		canonicalQuery(req),
		canonicalHeaders,
		signedHeaders,
		payloadHash,
	}, "\n")

	hashed := sha256.Sum256([]byte(canonicalRequest))
	stringToSign := strings.Join([]string{
		SigningAlgorithm,
		amzDate,
		scope,
		hex.EncodeToString(hashed[:]),
	}, "\n")

	key := deriveKey(creds.SecretAccessKey, t.Format(shortTimeFormat), region, service)
	signature := hex.EncodeToString(hmacSHA256(key, []byte(stringToSign)))

	req.Header.Set("Authorization", SigningAlgorithm+
		" Credential="+creds.AccessKeyID+"/"+scope+
		", SignedHeaders="+signedHeaders+
		", Signature="+signature)
	return nil
}

// canonicalURIPath returns the URI-encoded request path, defaulting to "/".
// The escaped form of the parsed path is used as-is; the APS endpoints do not
// require the double escaping some services (notably S3) disable.
func canonicalURIPath(req *http.Request) string {
	path := req.URL.EscapedPath()
	if path == "" {
		return "/"
	}
	return path
}

// canonicalQuery returns the query string sorted lexicographically by key and
// then by value, with spaces encoded as %20.
func canonicalQuery(req *http.Request) string {
	query := req.URL.Query()
	for key := range query {
		sort.Strings(query[key])
	}
	return strings.ReplaceAll(query.Encode(), "+", "%20")
}

// canonicalizeHeaders builds the canonical header block (each entry
// "name:value\n", names lower-cased and sorted, values trimmed with interior
// runs of spaces collapsed) and the semicolon-joined signed-header list. The
// host header is always signed; content-length is signed when known.
func canonicalizeHeaders(req *http.Request) (canonical, signed string) {
	host := req.Host
	if host == "" {
		host = req.URL.Host
	}

	entries := map[string][]string{"host": {host}}
	names := []string{"host"}
	if req.ContentLength > 0 {
		entries["content-length"] = []string{strconv.FormatInt(req.ContentLength, 10)}
		names = append(names, "content-length")
	}

	for name, values := range req.Header {
		lower := strings.ToLower(name)
		if _, skip := unsignableHeaders[lower]; skip {
			continue
		}
		if lower == "content-length" {
			continue
		}
		if _, ok := entries[lower]; !ok {
			names = append(names, lower)
		}
		entries[lower] = append(entries[lower], values...)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString(name)
		b.WriteByte(':')
		for i, v := range entries[name] {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(collapseSpaces(v))
		}
		b.WriteByte('\n')
	}
	return b.String(), strings.Join(names, ";")
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// deriveKey derives the signing key through the SigV4 nested HMAC chain:
// kDate = HMAC("AWS4"+secret, date); kRegion = HMAC(kDate, region);
// kService = HMAC(kRegion, service); kSigning = HMAC(kService, terminator).
func deriveKey(secret, date, region, service string) []byte {
	kDate := hmacSHA256([]byte("AWS4"+secret), []byte(date))
	kRegion := hmacSHA256(kDate, []byte(region))
	kService := hmacSHA256(kRegion, []byte(service))
	return hmacSHA256(kService, []byte(terminator))
}

func hmacSHA256(key, data []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(data)
	return h.Sum(nil)
}
