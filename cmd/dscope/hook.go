package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diffscope/diffscope/internal/git"
)

const hookScript = `#!/bin/sh
# installed by dscope hook install
dscope hook run "$1" "$2" || true
`

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Manage the prepare-commit-msg git hook",
	Long: `Installs a prepare-commit-msg hook that pre-fills the commit message
with the suggestion for the staged changes. The hook never blocks a
commit: failures leave the message untouched.`,
}

var hookInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the prepare-commit-msg hook",
	RunE:  runHookInstall,
}

var hookUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the prepare-commit-msg hook",
	RunE:  runHookUninstall,
}

var hookRunCmd = &cobra.Command{
	Use:    "run <msg-file> [source]",
	Hidden: true,
	Args:   cobra.RangeArgs(1, 2),
	RunE:   runHookRun,
}

func init() {
	hookCmd.AddCommand(hookInstallCmd)
	hookCmd.AddCommand(hookUninstallCmd)
	hookCmd.AddCommand(hookRunCmd)
}

func hookPath(ctx context.Context) (string, error) {
	root, err := git.FindRoot(ctx, ".")
	if err != nil {
		return "", fmt.Errorf("not inside a git repository: %w", err)
	}
	return filepath.Join(root, ".git", "hooks", "prepare-commit-msg"), nil
}

func runHookInstall(cmd *cobra.Command, args []string) error {
	path, err := hookPath(context.Background())
	if err != nil {
		return err
	}

	if data, err := os.ReadFile(path); err == nil {
		if strings.Contains(string(data), "dscope hook run") {
			fmt.Println("Hook already installed")
			return nil
		}
		return fmt.Errorf("a prepare-commit-msg hook already exists at %s; remove it first", path)
	}

	if err := os.WriteFile(path, []byte(hookScript), 0o755); err != nil {
		return fmt.Errorf("write hook: %w", err)
	}
	fmt.Printf("Installed %s\n", path)
	return nil
}

func runHookUninstall(cmd *cobra.Command, args []string) error {
	path, err := hookPath(context.Background())
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		fmt.Println("Hook not installed")
		return nil
	}
	if err != nil {
		return err
	}
	if !strings.Contains(string(data), "dscope hook run") {
		return fmt.Errorf("%s was not installed by diffscope; not removing", path)
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove hook: %w", err)
	}
	fmt.Printf("Removed %s\n", path)
	return nil
}

// runHookRun fills the commit message file with the suggestion for the
// staged changes. Only plain commits get a suggestion; merges, squashes
// and -m messages pass through unchanged.
func runHookRun(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	msgFile := args[0]
	if len(args) == 2 && args[1] != "" {
		// message, template, merge, squash or commit source: git already
		// has a message, leave it alone.
		return nil
	}

	existing, err := os.ReadFile(msgFile)
	if err != nil {
		return nil
	}
	if hasMessageContent(string(existing)) {
		return nil
	}

	_, changes, err := collectChanges(ctx, true)
	if err != nil || len(changes) == 0 {
		return nil
	}

	// Heuristics only: hooks must stay fast and offline.
	engine, closeEngine, err := newEngine(ctx, true)
	if err != nil {
		return nil
	}
	defer closeEngine()

	strategy := engine.Analyze(ctx, changes)
	if len(strategy.Commits) == 0 {
		return nil
	}
	msg := strategy.Commits[0].Message

	var b strings.Builder
	b.WriteString(msg.Title)
	b.WriteString("\n")
	if msg.Body != "" {
		b.WriteString("\n")
		b.WriteString(msg.Body)
		b.WriteString("\n")
	}
	b.Write(existing)

	_ = os.WriteFile(msgFile, []byte(b.String()), 0o644)
	return nil
}

// hasMessageContent reports whether the commit message file already
// carries non-comment text.
func hasMessageContent(s string) bool {
	for _, line := range strings.Split(s, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !strings.HasPrefix(trimmed, "#") {
			return true
		}
	}
	return false
}
