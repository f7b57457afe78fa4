// Package version reports the jsonflow build version.
//
// Values are injected at link time:
//
//	go build -ldflags "-X github.com/kbukum/jsonflow/version.Version=1.2.0" ./cmd/jsonflow
//
// Missing values fall back to the VCS stamp in the binary's build info.
package version
