// Package sigv4 implements AWS Signature Version 4 request signing for the
// Amazon Managed Service for Prometheus endpoints.
//
// The package provides:
//   - Sign: computes the signature over the canonical form of an HTTP
//     request and attaches the Authorization header
//   - Transport: an http.RoundTripper that hashes the body, resolves
//     credentials, and signs each outgoing request
//   - CredentialsProvider: call-time credential resolution abstraction
//
// The signing algorithm follows the published SigV4 specification:
// canonical request, string to sign with a date/region/service scoped
// credential, nested HMAC-SHA256 key derivation, and hex encoded signature.
// Identical inputs always produce identical signatures; any byte change in
// the method, path, query, signed headers, or body hash changes the result.
package sigv4
