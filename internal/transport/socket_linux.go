//go:build linux

package transport

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"
)

// setSocketOptions configures platform-specific socket options for Linux.
// SO_REUSEADDR lets a restarted resolver client rebind its ephemeral port
// immediately instead of waiting out TIME_WAIT.
func setSocketOptions(fd uintptr) error {
	if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return fmt.Errorf("failed to set SO_REUSEADDR: %w", err)
	}
	return nil
}

// platformControl is the net.ListenConfig.Control function for Linux.
func platformControl(_, _ string, c syscall.RawConn) error {
	var sockoptErr error
	err := c.Control(func(fd uintptr) {
		sockoptErr = setSocketOptions(fd)
	})
	if err != nil {
		return fmt.Errorf("raw conn control failed: %w", err)
	}
	return sockoptErr
}

// PlatformControl is the exported net.ListenConfig.Control hook used by
// NewUDPTransport.
func PlatformControl(network, address string, c syscall.RawConn) error {
	return platformControl(network, address, c)
}
