// Package version reports the build of the running binary.
//
//	go build -ldflags "-X github.com/atelierai/platform/version.Version=1.0.0"
package version
