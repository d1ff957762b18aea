package config

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// PromptAPIKey reads an API key from the terminal without echoing it.
// Falls back to plain (echoed) input when stdin is not a terminal, for
// example when piped in CI.
func PromptAPIKey(label string) (string, error) {
	fmt.Printf("%s: ", label)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("read key: %w", err)
		}
		return strings.TrimSpace(string(raw)), nil
	}

	var line string
	if _, err := fmt.Fscanln(os.Stdin, &line); err != nil {
		return "", fmt.Errorf("read key: %w", err)
	}
	return strings.TrimSpace(line), nil
}
