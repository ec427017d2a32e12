// Package auth computes and verifies the request signatures used by the
// Vuforia Web Services (VWS) management API and the cloud recognition query
// API.
//
// A signature is the base64 encoded HMAC-SHA1 of five newline-joined fields,
// in this order:
//
//	METHOD
//	hex(md5(body))
//	content type
//	date (RFC 1123, GMT)
//	request path
//
// keyed by the secret key. The resulting Authorization header reads
// "VWS <access key>:<signature>".
//
// The digest must be computed over the exact bytes that go on the wire and
// the date must be the exact string sent in the Date header, so callers
// finalize the body and the date before calling [Sign] or [Header].
package auth
