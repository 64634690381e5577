package cmd

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestExtensionMechanism(t *testing.T) {
	tempDir := t.TempDir()

	// moola-hello prints the environment it received.
	helloCmdSource := fmt.Sprintf(`
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Printf("%[1]s=%%s\n", os.Getenv("%[1]s"))
	fmt.Printf("%[2]s=%%s\n", os.Getenv("%[2]s"))
	fmt.Printf("%[3]s=%%s\n", os.Getenv("%[3]s"))
	fmt.Printf("args=%%v\n", os.Args[1:])
}
`, EnvDataDir, EnvCurrency, EnvVerbose)

	helloCmdPath := filepath.Join(tempDir, "moola-hello")
	srcFile := helloCmdPath + ".go"
	if err := os.WriteFile(srcFile, []byte(helloCmdSource), 0644); err != nil {
		t.Fatalf("Failed to write moola-hello source: %v", err)
	}
	cmd := exec.Command("go", "build", "-o", helloCmdPath, srcFile)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("Failed to compile moola-hello: %v", err)
	}

	moolaBinaryPath := filepath.Join(tempDir, "moola")
	cmd = exec.Command("go", "build", "-o", moolaBinaryPath, "../moola")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("Failed to compile moola binary: %v", err)
	}

	dataDir := filepath.Join(tempDir, "data")
	args := []string{
		"-data-dir", dataDir,
		"-currency", "XYZ",
		"-v",
		"hello", "world",
	}
	moolaCmd := exec.Command(moolaBinaryPath, args...)
	moolaCmd.Env = []string{"PATH=" + tempDir + string(os.PathListSeparator) + os.Getenv("PATH")}

	var stdout, stderr bytes.Buffer
	moolaCmd.Stdout = &stdout
	moolaCmd.Stderr = &stderr
	if err := moolaCmd.Run(); err != nil {
		t.Fatalf("moola command failed: %v\nStdout: %s\nStderr: %s", err, stdout.String(), stderr.String())
	}

	output := stdout.String()
	for _, want := range []string{
		EnvDataDir + "=" + dataDir,
		EnvCurrency + "=XYZ",
		EnvVerbose + "=true",
		"args=[world]",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected output to contain %q, but got:\n%s", want, output)
		}
	}
}

func TestExtensionNotFound(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	found, code := RunExtension("does-not-exist", nil)
	if found || code != 0 {
		t.Errorf("RunExtension() = %v, %d, want false, 0", found, code)
	}
}
