// Package common holds process-wide settings shared by the binaries.
package common

var (
	// Version is overridden at build time with -ldflags "-X ...common.Version=...".
	Version = "dev"

	PackageName = "github.com/ruteri/sskr-service"
)
