package power

import (
	"fmt"
	"os/exec"
	"runtime"

	"volnudge/internal/domain"
)

// ExecController implements domain.PowerController with the OS shutdown command.
// This is a secondary adapter.
type ExecController struct {
	goos string
	run  func(name string, args ...string) error
}

// NewExecController creates a power controller for the running OS.
func NewExecController() domain.PowerController {
	return &ExecController{goos: runtime.GOOS, run: runCommand}
}

func runCommand(name string, args ...string) error {
	output, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s failed: %w, output: %s", name, err, string(output))
	}
	return nil
}

// Shutdown powers the host off immediately.
func (c *ExecController) Shutdown() error {
	return c.exec(false)
}

// Restart reboots the host immediately.
func (c *ExecController) Restart() error {
	return c.exec(true)
}

func (c *ExecController) exec(restart bool) error {
	name, args, err := commandFor(c.goos, restart)
	if err != nil {
		return err
	}
	return c.run(name, args...)
}

func commandFor(goos string, restart bool) (string, []string, error) {
	switch goos {
	case "windows":
		if restart {
			return "shutdown", []string{"/r", "/t", "0"}, nil
		}
		return "shutdown", []string{"/s", "/t", "0"}, nil
	case "linux", "darwin", "freebsd", "openbsd", "netbsd":
		if restart {
			return "shutdown", []string{"-r", "now"}, nil
		}
		return "shutdown", []string{"-h", "now"}, nil
	default:
		return "", nil, fmt.Errorf("%w: no shutdown command for %s", domain.ErrUnsupportedPlatform, goos)
	}
}
