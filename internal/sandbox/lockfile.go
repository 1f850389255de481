package sandbox

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/mealplanner/internal/constants"
)

var (
	findProcessFunc = ps.FindProcess
	getpidFunc      = os.Getpid

	ErrNotRunning = errors.New("sandbox is not running")
)

// Lock describes a running sandbox as recorded in its lockfile.
type Lock struct {
	Addr string
	PID  int
}

// LockfilePath is where a running sandbox records its address and pid.
func LockfilePath(configDir string) string {
	return filepath.Join(configDir, constants.SandboxLockfileName)
}

// WriteLock records addr and the current pid. It refuses to overwrite the
// lockfile of a sandbox that is still alive.
func WriteLock(path, addr string) error {
	if lock, err := CheckLock(path); err == nil {
		return fmt.Errorf("sandbox already running on %s (pid %d)", lock.Addr, lock.PID)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create lockfile directory: %w", err)
	}
	content := fmt.Sprintf("%s|%d", addr, getpidFunc())
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write lockfile: %w", err)
	}
	return nil
}

// RemoveLock deletes the lockfile if it belongs to this process.
func RemoveLock(path string) error {
	lock, err := readLock(path)
	if err != nil {
		return nil
	}
	if lock.PID != getpidFunc() {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func readLock(path string) (Lock, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Lock{}, ErrNotRunning
	}
	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 2 {
		return Lock{}, errors.New("lockfile is malformed")
	}
	addr := strings.TrimSpace(parts[0])
	if addr == "" {
		return Lock{}, errors.New("address in lockfile is empty")
	}
	pid, err := strconv.Atoi(parts[1])
	if err != nil || pid < 1 {
		return Lock{}, errors.New("invalid process ID in lockfile")
	}
	return Lock{Addr: addr, PID: pid}, nil
}

// CheckLock reads the lockfile and verifies that its process is still a
// mealplanner binary.
func CheckLock(path string) (Lock, error) {
	lock, err := readLock(path)
	if err != nil {
		return Lock{}, err
	}
	process, err := findProcessFunc(lock.PID)
	if err != nil || process == nil {
		return Lock{}, fmt.Errorf("%w (stale lockfile for pid %d)", ErrNotRunning, lock.PID)
	}
	if !strings.HasPrefix(process.Executable(), constants.SandboxExecutableName) {
		return Lock{}, fmt.Errorf("process with PID %d is not %s (is %s)", lock.PID, constants.SandboxExecutableName, process.Executable())
	}
	return lock, nil
}
