package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// writePidFile records the current process PID so stop/status can find it.
func writePidFile(path string) error {
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

// readPidFile returns the PID recorded in the file.
func readPidFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("pidfile %q: %w", path, err)
	}
	return pid, nil
}

// processAlive reports whether the PID refers to a live process we can signal.
func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
