// Package vwstest runs an in-process fake of the management and query APIs
// for tests.
//
// The fake checks every signature against the configured key pairs, models
// the processing window of new and updated targets with a TTL cache, and
// answers with the same result codes the real service uses for the cases it
// covers. It is not a complete reproduction of the service.
//
//	srv := vwstest.New(t, vwstest.WithProcessingTime(200*time.Millisecond))
//	client, _ := vws.NewClient(srv.ManagementConfig())
package vwstest
