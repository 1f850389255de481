package e2e

import (
	"bytes"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const (
	lockfileTimeout = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

// TestEndToEndWorkflow drives the built binary against its own sandbox:
// register, stock the pantry, plan a meal and read the shopping list.
func TestEndToEndWorkflow(t *testing.T) {
	// 1. Locate the binary. MEALPLANNER_BIN_DIR overrides ../../bin.
	binDir := os.Getenv("MEALPLANNER_BIN_DIR")
	if binDir == "" {
		binDir = filepath.Join("..", "..", "bin")
	}
	binDir, _ = filepath.Abs(binDir)
	cliPath := filepath.Join(binDir, "mealplanner")
	if _, err := os.Stat(cliPath); os.IsNotExist(err) {
		t.Skipf("binary not found at %s; run `go build -o bin/mealplanner ./cmd/mealplanner` first", cliPath)
	}

	// 2. Isolated environment
	tempDir := t.TempDir()
	configDir := filepath.Join(tempDir, "mealplanner")
	addr := freeAddr(t)

	var env []string
	for _, e := range os.Environ() {
		if !strings.HasPrefix(e, "MEALPLANNER_") && !strings.HasPrefix(e, "HOME=") {
			env = append(env, e)
		}
	}
	env = append(env,
		"HOME="+tempDir,
		"MEALPLANNER_CONFIG_DIR="+configDir,
		"MEALPLANNER_API_URL=http://"+addr+"/api",
		"MEALPLANNER_SANDBOX_ADDR="+addr,
		"MEALPLANNER_SANDBOX_DB="+filepath.Join(configDir, "sandbox.db"),
		"MEALPLANNER_PASSWORD=hunter22",
	)

	// 3. Start the sandbox
	t.Log("Starting sandbox...")
	var serverOut bytes.Buffer
	server := exec.Command(cliPath, "sandbox", "serve")
	server.Env = env
	server.Dir = tempDir
	server.Stdout = &serverOut
	server.Stderr = &serverOut
	if err := server.Start(); err != nil {
		t.Fatalf("Failed to start sandbox: %v", err)
	}
	stopped := false
	defer func() {
		if !stopped {
			_ = server.Process.Kill()
			_ = server.Wait()
		}
		if t.Failed() {
			t.Logf("Sandbox output: %s", serverOut.String())
		}
	}()

	lockfilePath := filepath.Join(configDir, "sandbox.lock")
	waitForFile(t, lockfilePath, lockfileTimeout)
	waitForPort(t, addr, lockfileTimeout)
	t.Log("Lockfile found, sandbox is ready")

	// 4. Account
	out := runCmd(t, cliPath, env, "register", "-u", "ada", "-e", "ada@example.com",
		"-f", "4", "-q", "What is your favorite book?", "-a", "Dune")
	expectContains(t, out, "Registration successful!")
	out = runCmd(t, cliPath, env, "login", "-e", "ada@example.com")
	expectContains(t, out, "Logged in as ada")

	// 5. Pantry and plan
	runCmd(t, cliPath, env, "ingredients", "add", "Egg", "1", "pcs")
	out = runCmd(t, cliPath, env, "calendar", "assign", "mon", "1", "-i", "egg", "-r", "Omelette")
	expectContains(t, out, "Monday slot 1: Omelette")
	out = runCmd(t, cliPath, env, "calendar", "show", "monday")
	expectContains(t, out, "1. Omelette")

	// 6. One egg for a family of four leaves three short
	out = runCmd(t, cliPath, env, "dashboard", "--shortages")
	expectContains(t, out, "Egg: 3 pcs")

	out = runCmd(t, cliPath, env, "doctor")
	expectContains(t, out, "All diagnostics passed!")

	// 7. Stop the sandbox and check it cleans up
	t.Log("Stopping sandbox...")
	if err := server.Process.Signal(os.Interrupt); err != nil {
		t.Fatalf("Failed to signal sandbox: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- server.Wait() }()
	select {
	case err := <-done:
		stopped = true
		if err != nil {
			t.Errorf("Sandbox exited with error: %v", err)
		}
	case <-time.After(shutdownTimeout):
		t.Fatal("Timed out waiting for the sandbox to stop")
	}
	if _, err := os.Stat(lockfilePath); !os.IsNotExist(err) {
		t.Errorf("Lockfile still present after shutdown")
	}
}

func freeAddr(t *testing.T) string {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to find a free port: %v", err)
	}
	defer l.Close()
	return l.Addr().String()
}

func runCmd(t *testing.T, path string, env []string, args ...string) string {
	cmd := exec.Command(path, args...)
	cmd.Env = env
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("Command %s %v failed: %v\nOutput: %s", path, args, err, out)
	}
	return string(out)
}

func expectContains(t *testing.T, out, want string) {
	t.Helper()
	if !strings.Contains(out, want) {
		t.Errorf("output missing %q:\n%s", want, out)
	}
}

func waitForFile(t *testing.T, path string, timeout time.Duration) {
	start := time.Now()
	for {
		if _, err := os.Stat(path); err == nil {
			return
		}
		if time.Since(start) > timeout {
			t.Fatalf("Timed out waiting for file: %s", path)
		}
		time.Sleep(100 * time.Millisecond)
	}
}

func waitForPort(t *testing.T, addr string, timeout time.Duration) {
	start := time.Now()
	for {
		conn, err := net.DialTimeout("tcp", addr, time.Second)
		if err == nil {
			conn.Close()
			return
		}
		if time.Since(start) > timeout {
			t.Fatalf("Timed out waiting for %s: %v", addr, err)
		}
		time.Sleep(100 * time.Millisecond)
	}
}
