// Package component defines the lifecycle contract shared by the
// infrastructure pieces of a service (database, cache connection, HTTP
// server) and a Registry that starts them in order and stops them in
// reverse.
package component
