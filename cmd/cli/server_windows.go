//go:build windows

package main

import (
	"os/exec"
	"syscall"
)

// DETACHED_PROCESS from the Win32 process creation flags
const detachedProcess = 0x00000008

// setSysProcAttr runs the server without a console, in its own process group
func setSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP | detachedProcess,
		HideWindow:    true,
	}
}
