// Package security holds the TLS settings shared by the platform's
// network clients and the API server.
//
//	redis:
//	  url: "rediss://cache.internal:6380/0"
//	  tls:
//	    ca_file: "/etc/platform/ca.pem"
//	server:
//	  tls:
//	    cert_file: "/etc/platform/api.pem"
//	    key_file: "/etc/platform/api-key.pem"
//
// Build produces a client *tls.Config; BuildServer produces a listener
// config, with mutual TLS when client_ca_file is set.
package security
