//go:build windows

package utils

import "golang.org/x/sys/windows"

const socketBufferSize = 1024 * 1024

func setSocketOptions(fd uintptr) {
	windows.SetsockoptInt(windows.Handle(fd), windows.SOL_SOCKET, windows.SO_RCVBUF, socketBufferSize)
}
