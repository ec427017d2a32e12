// Package vws is a client for the Vuforia Web Services target management
// API and the Cloud Recognition query API.
//
// # Clients
//
// Client wraps the management API and is configured with the server key
// pair. CloudRecoClient wraps the query API and is configured with the client
// key pair. Both are built from a Config:
//
//	client, err := vws.NewClient(vws.Config{
//		AccessKey: serverAccessKey,
//		SecretKey: serverSecretKey,
//	})
//	if err != nil {
//		return err
//	}
//	id, err := client.AddTarget(ctx, vws.AddTargetRequest{
//		Name:   "widget",
//		Width:  1,
//		Image:  imageFile,
//		Active: true,
//	})
//	if err != nil {
//		return err
//	}
//	record, err := client.WaitForTargetProcessed(ctx, id, vws.WaitOptions{})
//
// Every operation performs exactly one request, except
// WaitForTargetProcessed, which polls GetTargetRecord. Nothing is retried.
// Clients hold no mutable state and are safe for concurrent use.
//
// # Requests
//
// Each request is built in two phases. The body is serialized to its final
// bytes first, then the signature is computed over the MD5 of exactly those
// bytes together with the method, content type, Date header and path. See
// package auth for the canonical form. Query bodies are multipart with a
// random boundary; the boundary is not part of the signed content type.
//
// # Errors
//
// Every error returned by this package belongs to a closed set of kinds:
//
//   - *ValidationError: input rejected before any request was made
//   - *NetworkError: no response (KindConnectionFailure, KindRequestTimeout)
//   - *Error: the service answered with something other than success; the
//     raw Response is always attached
//   - *TargetProcessingTimeoutError: WaitForTargetProcessed ran out of budget
//
// Kind implements error, so classification works with errors.Is:
//
//	err := client.DeleteTarget(ctx, id)
//	if errors.Is(err, vws.KindTargetStatusProcessing) {
//		// wait and try again
//	}
//
// Non-2xx responses are classified in a fixed order: 413 is
// RequestEntityTooLarge, 429 is TooManyRequests, 5xx is ServerError, and any
// other status is looked up by its result_code. Bodies without a known
// result_code fall back to UnknownVWSError.
//
// A context cancelled by the caller is returned as the wrapped context
// error. A deadline reached during an exchange is a KindRequestTimeout.
package vws
