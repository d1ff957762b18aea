package main

import (
	"bufio"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diffscope/diffscope/internal/config"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Interactive setup wizard (with OS keychain support)",
	Long: `Walk through diffscope configuration step-by-step:

1. AI provider selection (OpenAI, Gemini, or none)
2. API key (stored in the OS keychain by default)
3. GitHub token for the pr command (optional)

Diffscope works without any AI provider; boundaries are then detected
with heuristics only.`,
	RunE: runConfigure,
}

func runConfigure(cmd *cobra.Command, args []string) error {
	fmt.Println("Diffscope Configuration")
	fmt.Println("=======================")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)

	configPath := config.DefaultPath()
	loadedCfg, err := config.Load(configPath)
	if err != nil {
		loadedCfg = config.Default()
	}

	km := config.NewKeyringManager()
	keychainAvailable := km.Available()
	if !keychainAvailable {
		fmt.Println("OS keychain not available (headless system or Linux without libsecret).")
		fmt.Println("API keys will be stored in the config file instead.")
		fmt.Println()
	}

	// Step 1: provider
	fmt.Println("Step 1/3: AI Provider")
	fmt.Println("  1. openai (gpt-4o-mini)")
	fmt.Println("  2. gemini (gemini-2.0-flash)")
	fmt.Println("  3. none (heuristics only)")
	fmt.Printf("Current: %s\n", loadedCfg.AI.Provider)
	fmt.Print("Select provider (1-3) or press Enter to keep current: ")

	response, _ := reader.ReadString('\n')
	switch strings.TrimSpace(response) {
	case "1":
		loadedCfg.AI.Provider = "openai"
	case "2":
		loadedCfg.AI.Provider = "gemini"
	case "3":
		loadedCfg.AI.Provider = "none"
	}
	loadedCfg.AI.Enabled = loadedCfg.AI.Provider != "none"
	fmt.Printf("Using provider: %s\n\n", loadedCfg.AI.Provider)

	// Step 2: API key
	if loadedCfg.AI.Provider != "none" {
		fmt.Println("Step 2/3: API Key")
		keyName := config.KeyOpenAI
		if loadedCfg.AI.Provider == "gemini" {
			keyName = config.KeyGemini
		}

		apiKey, err := config.PromptAPIKey(fmt.Sprintf("Enter your %s API key", loadedCfg.AI.Provider))
		if err != nil {
			return fmt.Errorf("read API key: %w", err)
		}

		if apiKey == "" {
			fmt.Println("Skipped; set it later via dscope configure or the environment")
		} else if keychainAvailable {
			if err := km.Set(keyName, apiKey); err != nil {
				fmt.Printf("Failed to save to keychain: %v\n", err)
				fmt.Println("Saving to config file instead")
				setConfigKey(loadedCfg, apiKey)
				loadedCfg.AI.UseKeychain = false
			} else {
				loadedCfg.AI.UseKeychain = true
				fmt.Printf("API key saved to %s\n", keychainLocation())
			}
		} else {
			setConfigKey(loadedCfg, apiKey)
			loadedCfg.AI.UseKeychain = false
			fmt.Println("API key saved to config file (plaintext)")
		}
		fmt.Println()
	}

	// Step 3: GitHub token
	fmt.Println("Step 3/3: GitHub Token (optional, used by dscope pr)")
	if loadedCfg.GitHub.Token != "" {
		fmt.Printf("Current: %s\n", config.MaskAPIKey(loadedCfg.GitHub.Token))
	}
	fmt.Print("Enter a GitHub token or press Enter to skip: ")
	response, _ = reader.ReadString('\n')
	if token := strings.TrimSpace(response); token != "" {
		loadedCfg.GitHub.Token = token
	}
	fmt.Println()

	fmt.Printf("Save to: %s\n", configPath)
	fmt.Print("Confirm? (Y/n): ")
	response, _ = reader.ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))
	if response != "" && response != "y" {
		fmt.Println("Configuration not saved")
		return nil
	}

	if err := loadedCfg.Save(configPath); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	fmt.Println("Configuration saved")
	fmt.Println()
	fmt.Println("Try it out:")
	fmt.Println("  cd /path/to/your/repo")
	fmt.Println("  dscope split")
	return nil
}

func setConfigKey(c *config.Config, apiKey string) {
	if c.AI.Provider == "gemini" {
		c.AI.GeminiKey = apiKey
	} else {
		c.AI.OpenAIKey = apiKey
	}
}

func keychainLocation() string {
	switch runtime.GOOS {
	case "darwin":
		return "macOS Keychain"
	case "windows":
		return "Windows Credential Manager"
	case "linux":
		return "Linux Secret Service (libsecret)"
	default:
		return "the OS keychain"
	}
}
