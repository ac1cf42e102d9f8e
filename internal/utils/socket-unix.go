//go:build unix

package utils

import "golang.org/x/sys/unix"

const socketBufferSize = 1024 * 1024

// setSocketOptions widens the receive buffer; downloads are read-heavy.
func setSocketOptions(fd uintptr) {
	unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF, socketBufferSize)
}
