package main

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"

	. "github.com/onsi/gomega"
)

// runAgent runs the binary and returns stdout, stderr and the exit error.
func runAgent(binaryPath string, env map[string]string, args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.Command(binaryPath, args...)
	cmd.Env = os.Environ()
	for k, v := range env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// createFileInDir writes content to dir/name and returns the path.
func createFileInDir(dir, name, content string) string {
	path := filepath.Join(dir, name)
	Expect(os.MkdirAll(filepath.Dir(path), 0o755)).To(Succeed())
	Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())
	return path
}
