package cmd

import (
	"crypto/rand"
	"fmt"
	"os"

	"netgraphx/internal/config"
	"netgraphx/internal/docker"
	"netgraphx/internal/git"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize netgraphx configuration",
	Long: `Initialize netgraphx configuration and settings.

Creates a .netgraphx.yaml configuration file in the current directory with
default values and a randomly generated Neo4j password, a .env file for the
Gemini API key, and the neo4j-data directory for Docker volume mounting.

Example:
  netgraphx init`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := fmt.Sprintf("%s.%s", config.ConfigFileName, config.ConfigFileType)

	// Check if config file already exists
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists at %s", configPath)
	}

	cfg := config.DefaultConfig()

	password, err := generateRandomPassword(16)
	if err != nil {
		return fmt.Errorf("failed to generate random password: %w", err)
	}
	cfg.Neo4j.Password = password

	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	if err := os.MkdirAll(docker.DefaultDataDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", docker.DefaultDataDir, err)
	}

	envCreated := false
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		if err := os.WriteFile(".env", []byte("API_KEY=\n"), 0600); err != nil {
			return fmt.Errorf("failed to create .env file: %w", err)
		}
		envCreated = true
	}

	fmt.Printf("✓ Created configuration file: %s\n\n", configPath)
	fmt.Println("Default configuration:")
	fmt.Printf("  oracle.model: %s\n", cfg.Oracle.Model)
	fmt.Printf("  render.command: %s\n", cfg.Render.Command)
	fmt.Printf("  output_dir: %s\n", cfg.OutputDir)
	fmt.Printf("  neo4j.uri: %s\n", cfg.Neo4j.URI)
	fmt.Printf("  neo4j.user: %s\n", cfg.Neo4j.User)
	fmt.Printf("  neo4j.password: %s\n", cfg.Neo4j.Password)
	fmt.Printf("  neo4j.docker_image: %s\n\n", cfg.Neo4j.DockerImage)
	fmt.Printf("✓ Created data directory: %s\n", docker.DefaultDataDir)
	if envCreated {
		fmt.Println("✓ Created .env; set API_KEY to your Gemini API key")
	}

	entries := git.IgnoreEntries(configPath, cfg.OutputDir)
	if !git.IsRepository(".") {
		fmt.Println("\nNote: Not inside a Git repository. If you initialize one later,")
		fmt.Printf("remember to add the following to your .gitignore: %v\n", entries)
		return nil
	}

	added, err := git.UpdateGitignore(".", entries)
	if err != nil {
		// If gitignore update fails, print a warning but don't fail the command
		fmt.Fprintf(os.Stderr, "Warning: failed to update .gitignore: %v\n", err)
		fmt.Printf("Please manually add %v to your .gitignore file.\n", entries)
		return nil
	}
	if len(added) > 0 {
		fmt.Printf("\n✓ Added the following entries to .gitignore: %v\n", added)
	} else {
		fmt.Println("\n✓ .gitignore already contains the necessary entries.")
	}

	return nil
}

// generateRandomPassword generates a random alphanumeric password of the specified length
func generateRandomPassword(length int) (string, error) {
	// Alphanumeric only; the password ends up in NEO4J_AUTH=user/password
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	for i := range bytes {
		bytes[i] = charset[int(bytes[i])%len(charset)]
	}
	return string(bytes), nil
}

func init() {
	rootCmd.AddCommand(initCmd)
}
