//go:build windows

package supervisor

import (
	"os"
	"os/exec"
)

func setProcessGroup(*exec.Cmd) {}

// terminate kills outright; Windows has no SIGTERM for console processes.
func terminate(p *os.Process) error {
	return p.Kill()
}

func kill(p *os.Process) error {
	return p.Kill()
}
