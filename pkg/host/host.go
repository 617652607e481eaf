// Package host locates, stops and restarts the desktop theming host
// around an installation run. The installer mutates the host's
// directories in place, so the host must not be running while any
// install step executes.
package host

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	stderrors "errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/rminstall/rminstall/pkg/config"
	"github.com/rminstall/rminstall/pkg/errors"
	"github.com/rminstall/rminstall/pkg/logging"
	"github.com/rminstall/rminstall/pkg/paths"
)

// Load types recognized in package manifests
const (
	LoadTypeSkin   = "Skin"
	LoadTypeLayout = "Layout"
)

// Controller stops and starts the host process around an install
type Controller interface {
	// Stop requests graceful termination and waits for the host to
	// exit. It reports whether the host was running, and fails with
	// ErrHostBusy if the host did not exit within the configured
	// timeout.
	Stop(ctx context.Context) (wasRunning bool, err error)

	// Start relaunches the host from its install path
	Start() error

	// Activate issues a follow-up command naming the skin or layout to
	// load after a restart
	Activate(loadType, target string) error
}

// New returns the platform controller, or a no-op controller on
// platforms without the host
func New(cfg *config.Config, p *paths.Paths) Controller {
	if runtime.GOOS != "windows" {
		return Nop{}
	}
	return &shellController{cfg: cfg, paths: p}
}

// Nop is a Controller that does nothing; it backs tests and platforms
// the host does not run on
type Nop struct{}

func (Nop) Stop(context.Context) (bool, error)   { return false, nil }
func (Nop) Start() error                         { return nil }
func (Nop) Activate(loadType, load string) error { return nil }

// shellController drives the host through PowerShell, finding its
// control window by the configured window class and title
type shellController struct {
	cfg   *config.Config
	paths *paths.Paths
}

// wmClose asks the control window to shut its host down
const wmClose = 0x0010

// stopScript builds the PowerShell script that locates the host's
// control window by its configured class and title, posts a close
// message to it, and waits for the owning process to exit. Exit codes:
// 0 stopped, 1 still running after the timeout, 2 not running.
func stopScript(h config.HostConfig) string {
	exe := strings.TrimSuffix(h.Executable, ".exe")
	return fmt.Sprintf(
		"Add-Type -Namespace Native -Name User32 -MemberDefinition '"+
			"[DllImport(\"user32.dll\", CharSet = CharSet.Unicode)] public static extern System.IntPtr FindWindowW(string lpClassName, string lpWindowName); "+
			"[DllImport(\"user32.dll\")] public static extern bool PostMessageW(System.IntPtr hWnd, uint msg, System.IntPtr wParam, System.IntPtr lParam);'; "+
			"$wnd = [Native.User32]::FindWindowW(%s, %s); "+
			"if ($wnd -eq [System.IntPtr]::Zero) { exit 2 }; "+
			"$null = [Native.User32]::PostMessageW($wnd, %d, [System.IntPtr]::Zero, [System.IntPtr]::Zero); "+
			"$p = Get-Process -Name %s -ErrorAction SilentlyContinue; "+
			"if ($p -eq $null) { exit 0 }; "+
			"if ($p.WaitForExit(%d)) { exit 0 } else { exit 1 }",
		quotePS(h.WindowClass), quotePS(h.WindowTitle), wmClose,
		quotePS(exe), h.StopTimeout.Milliseconds())
}

func (c *shellController) Stop(ctx context.Context) (bool, error) {
	logger := logging.GetLogger("host")

	script := stopScript(c.cfg.Host)
	cmd := exec.CommandContext(ctx, "powershell", "-NoProfile", "-EncodedCommand", encodeCommand(script))
	err := cmd.Run()
	if err == nil {
		logger.Info().Msg("Host stopped")
		return true, nil
	}

	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		switch exitErr.ExitCode() {
		case 2:
			logger.Debug().Msg("Host not running")
			return false, nil
		case 1:
			return true, errors.New(errors.ErrHostBusy, "host did not exit within timeout").
				WithDetail("timeout", c.cfg.Host.StopTimeout.String())
		}
	}

	return false, errors.Wrap(err, errors.ErrHostBusy, "cannot signal host process")
}

func (c *shellController) Start() error {
	exe := c.paths.HostExecutable(c.cfg.Host.Executable)
	cmd := exec.Command("powershell", "-NoProfile", "-Command",
		"Start-Process "+quotePS(exe))
	if err := cmd.Run(); err != nil {
		return errors.Wrap(err, errors.ErrIOFailure, "cannot start host").
			WithDetail("path", exe)
	}
	return nil
}

func (c *shellController) Activate(loadType, target string) error {
	if loadType != LoadTypeSkin && loadType != LoadTypeLayout {
		return nil
	}

	// give the host a moment to come up before sending commands
	time.Sleep(c.cfg.Host.StartupDelay)

	bang, err := ActivationCommand(loadType, target)
	if err != nil {
		return err
	}

	exe := c.paths.HostExecutable(c.cfg.Host.Executable)
	cmd := exec.Command("powershell", "-NoProfile", "-Command",
		"Start-Process "+quotePS(exe)+" -ArgumentList @("+quotePS(bang)+")")
	if err := cmd.Run(); err != nil {
		return errors.Wrap(err, errors.ErrIOFailure, "cannot send activation command").
			WithDetail("command", bang)
	}
	return nil
}

// ActivationCommand builds the host bang that loads the installed skin
// or layout. A skin target names a config directory plus a file and is
// split at its last path separator; a layout target is a bare name.
func ActivationCommand(loadType, target string) (string, error) {
	switch loadType {
	case LoadTypeSkin:
		idx := strings.LastIndexAny(target, `\/`)
		if idx < 0 {
			return "", errors.New(errors.ErrInvalidInput, "skin load target must contain a path separator").
				WithDetail("target", target)
		}
		dir, file := target[:idx], target[idx+1:]
		return fmt.Sprintf("[!ActivateConfig %q %q]", dir, file), nil
	case LoadTypeLayout:
		return fmt.Sprintf("[!LoadLayout %q]", target), nil
	default:
		return "", errors.New(errors.ErrInvalidInput, "unknown load type").
			WithDetail("loadType", loadType)
	}
}

// encodeCommand renders a script for PowerShell's -EncodedCommand flag,
// which expects base64-encoded UTF-16LE
func encodeCommand(script string) string {
	u := utf16.Encode([]rune(script))
	b := make([]byte, 2*len(u))
	for i, v := range u {
		binary.LittleEndian.PutUint16(b[2*i:], v)
	}
	return base64.StdEncoding.EncodeToString(b)
}

// quotePS returns a single-quoted PowerShell string literal, escaping
// single quotes by doubling them
func quotePS(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
