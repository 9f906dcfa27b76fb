// Package util holds small parsing and text helpers shared by the server
// and the account flows.
package util
