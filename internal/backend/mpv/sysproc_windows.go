//go:build windows

package mpv

import (
	"errors"
	"net"
	"os/exec"
	"syscall"
)

// mpv serves IPC on a named pipe on Windows
var errNoNamedPipes = errors.New("mpv ipc over named pipes is not supported")

func dial(string) (net.Conn, error) {
	return nil, errNoNamedPipes
}

func sysProcAttr() *syscall.SysProcAttr {
	return nil
}

func killProcess(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}
