package vwstest

import "github.com/five82/vws/vws"

// ManagementConfig returns a client config pointed at the fake with the
// server key pair.
func (s *Server) ManagementConfig() vws.Config {
	return vws.Config{
		AccessKey: s.ServerCreds.AccessKey,
		SecretKey: s.ServerCreds.SecretKey,
		BaseURL:   s.URL,
	}
}

// CloudRecoConfig returns a query client config pointed at the fake with the
// client key pair.
func (s *Server) CloudRecoConfig() vws.Config {
	return vws.Config{
		AccessKey: s.ClientCreds.AccessKey,
		SecretKey: s.ClientCreds.SecretKey,
		BaseURL:   s.URL,
	}
}
