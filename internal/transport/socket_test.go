package transport

import (
	"runtime"
	"syscall"
	"testing"

	"golang.org/x/sys/unix"
)

func TestSetSocketOptions_Linux(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("Linux-specific test")
	}

	fd, err := syscall.Socket(syscall.AF_INET, syscall.SOCK_DGRAM, syscall.IPPROTO_UDP)
	if err != nil {
		t.Fatalf("Failed to create socket: %v", err)
	}
	defer func() { _ = syscall.Close(fd) }()

	if err := setSocketOptions(uintptr(fd)); err != nil {
		t.Fatalf("setSocketOptions() failed: %v", err)
	}

	reuseAddr, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR)
	if err != nil {
		t.Fatalf("Failed to get SO_REUSEADDR: %v", err)
	}
	if reuseAddr != 1 {
		t.Errorf("SO_REUSEADDR = %d, want 1", reuseAddr)
	}
}

func TestSetSocketOptions_macOS(t *testing.T) {
	if runtime.GOOS != "darwin" {
		t.Skip("macOS-specific test")
	}

	fd, err := syscall.Socket(syscall.AF_INET, syscall.SOCK_DGRAM, syscall.IPPROTO_UDP)
	if err != nil {
		t.Fatalf("Failed to create socket: %v", err)
	}
	defer func() { _ = syscall.Close(fd) }()

	if err := setSocketOptions(uintptr(fd)); err != nil {
		t.Fatalf("setSocketOptions() failed: %v", err)
	}

	reuseAddr, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR)
	if err != nil {
		t.Fatalf("Failed to get SO_REUSEADDR: %v", err)
	}
	if reuseAddr != 1 {
		t.Errorf("SO_REUSEADDR = %d, want 1", reuseAddr)
	}
}

func TestSetSocketOptions_Windows(t *testing.T) {
	if runtime.GOOS != "windows" {
		t.Skip("Windows-specific test")
	}

	fd, err := syscall.Socket(syscall.AF_INET, syscall.SOCK_DGRAM, syscall.IPPROTO_UDP)
	if err != nil {
		t.Fatalf("Failed to create socket: %v", err)
	}
	defer func() { _ = syscall.Close(fd) }()

	if err := setSocketOptions(uintptr(fd)); err != nil {
		t.Fatalf("setSocketOptions() failed: %v", err)
	}
}
