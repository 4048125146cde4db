// Package shared provides small host-identity helpers used by the deadbolt
// command-line binary.
package shared

import (
	"os"
	"os/user"
)

// GetHostname returns the system hostname, or "" on error.
func GetHostname() string {
	h, err := os.Hostname()
	if err != nil {
		return ""
	}
	return h
}

// GetUsername returns the current user's name, or "" on error.
func GetUsername() string {
	u, err := user.Current()
	if err != nil {
		return ""
	}
	return u.Username
}
