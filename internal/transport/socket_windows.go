//go:build windows

package transport

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/windows"
)

// setSocketOptions configures platform-specific socket options for Windows.
//
// Windows SO_REUSEADDR has different semantics than POSIX: it allows
// multiple sockets to bind the same port rather than just reusing a
// TIME_WAIT socket. It is still the closest available equivalent, so it is
// set for the same rebind-after-restart reason as the other platforms.
func setSocketOptions(fd uintptr) error {
	if err := windows.SetsockoptInt(windows.Handle(fd), windows.SOL_SOCKET, windows.SO_REUSEADDR, 1); err != nil {
		return fmt.Errorf("failed to set SO_REUSEADDR: %w", err)
	}
	return nil
}

// platformControl is the net.ListenConfig.Control function for Windows.
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
