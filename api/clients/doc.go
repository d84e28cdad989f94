// Package clients provides a Go client for the sskr HTTP service,
// including signed submissions to a recovery keeper's admin API.
package clients
