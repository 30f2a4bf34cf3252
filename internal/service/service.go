// Package service installs the bot into the user's crontab so the send and
// poll jobs fire without a supervisor.
package service

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const marker = "# gardenbot"

// Install copies the binary to ~/.local/bin and appends crontab entries for
// the two jobs. Existing gardenbot entries are replaced.
func Install(sendCron string, pollEveryMin int) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolving executable path: %w", err)
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return fmt.Errorf("resolving symlinks: %w", err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("resolving home dir: %w", err)
	}
	binDest := filepath.Join(home, ".local", "bin", "gardenbot")

	input, err := os.ReadFile(exe)
	if err != nil {
		return fmt.Errorf("reading binary: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(binDest), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(binDest), err)
	}
	if err := os.WriteFile(binDest, input, 0o755); err != nil {
		return fmt.Errorf("copying binary to %s: %w", binDest, err)
	}
	fmt.Printf("installed binary to %s\n", binDest)

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolving working dir: %w", err)
	}

	existing, _ := readCrontab() // empty crontab is fine
	lines := withoutOurs(existing)
	lines = append(lines,
		fmt.Sprintf("%s cd %s && %s send %s", sendCron, wd, binDest, marker),
		fmt.Sprintf("*/%d * * * * cd %s && %s poll %s", pollEveryMin, wd, binDest, marker),
	)
	if err := writeCrontab(lines); err != nil {
		return err
	}
	fmt.Println("crontab entries installed")
	return nil
}

// Uninstall removes the crontab entries and the installed binary.
func Uninstall() error {
	existing, err := readCrontab()
	if err == nil {
		if err := writeCrontab(withoutOurs(existing)); err != nil {
			return err
		}
		fmt.Println("crontab entries removed")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("resolving home dir: %w", err)
	}
	binDest := filepath.Join(home, ".local", "bin", "gardenbot")
	if _, err := os.Stat(binDest); err == nil {
		if err := os.Remove(binDest); err != nil {
			return fmt.Errorf("removing binary: %w", err)
		}
		fmt.Printf("removed %s\n", binDest)
	} else {
		fmt.Println("binary not found, skipping")
	}
	return nil
}

// Status prints the gardenbot crontab entries, if any.
func Status() error {
	existing, err := readCrontab()
	if err != nil {
		fmt.Println("no crontab installed")
		return nil
	}
	found := false
	for _, line := range existing {
		if strings.Contains(line, marker) {
			fmt.Println(line)
			found = true
		}
	}
	if !found {
		fmt.Println("gardenbot is not installed in crontab")
	}
	return nil
}

func withoutOurs(lines []string) []string {
	var out []string
	for _, line := range lines {
		if strings.TrimSpace(line) == "" || strings.Contains(line, marker) {
			continue
		}
		out = append(out, line)
	}
	return out
}

func readCrontab() ([]string, error) {
	cmd := exec.Command("crontab", "-l")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("crontab -l: %s", strings.TrimSpace(stderr.String()))
	}
	return strings.Split(strings.TrimRight(stdout.String(), "\n"), "\n"), nil
}

func writeCrontab(lines []string) error {
	input := strings.Join(lines, "\n")
	if input != "" {
		input += "\n"
	}
	cmd := exec.Command("crontab", "-")
	cmd.Stdin = strings.NewReader(input)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("crontab -: %s", strings.TrimSpace(stderr.String()))
	}
	return nil
}
