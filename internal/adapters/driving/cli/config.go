package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and change settings stored in the hanrag config file.

Keys use dot notation, for example search.top_k or qdrant.base_url.
Values set here persist across runs; environment variables still take
precedence at startup.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print a single configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long: `Set a configuration value and persist it immediately.

Values are parsed as bool, int, or float when they look like one,
otherwise stored as strings:

  hanrag config set search.top_k 10
  hanrag config set ollama.base_url http://localhost:11434
  hanrag config set ontology.use_llm true`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// configSections drives the show output. Only known keys appear; the
// store may hold more, reachable through config get.
var configSections = []struct {
	Name string
	Keys []string
}{
	{"Ollama", []string{"ollama.base_url", "ollama.embedding_model", "ollama.timeout"}},
	{"OpenAI", []string{"openai.api_key", "openai.model", "openai.base_url"}},
	{"Qdrant", []string{"qdrant.base_url", "qdrant.collection", "qdrant.api_key"}},
	{"Redis", []string{"redis.addr", "redis.password", "redis.db", "redis.ttl"}},
	{"SQLite", []string{"sqlite.path"}},
	{"Search", []string{"search.mode", "search.top_k", "search.min_score", "search.rerank_min_score"}},
	{"Ontology", []string{"ontology.methods", "ontology.max_keywords", "ontology.use_llm"}},
	{"Chunker", []string{"chunker.chunk_size", "chunker.chunk_overlap"}},
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	cmd.Println("Current Configuration")
	cmd.Println("=====================")
	cmd.Println()

	for _, section := range configSections {
		cmd.Printf("[%s]\n", section.Name)
		for _, key := range section.Keys {
			value, ok := configStore.Get(key)
			if !ok {
				cmd.Printf("  %s: (not set)\n", shortKey(key))
				continue
			}
			cmd.Printf("  %s: %s\n", shortKey(key), displayValue(key, value))
		}
		cmd.Println()
	}

	cmd.Printf("Config file: %s\n", configStore.Path())
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key := args[0]
	value, ok := configStore.Get(key)
	if !ok {
		return fmt.Errorf("key %q not set", key)
	}

	cmd.Println(displayValue(key, value))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key, raw := args[0], args[1]
	if err := configStore.Set(key, parseConfigValue(raw)); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	cmd.Printf("%s = %s\n", key, displayValue(key, parseConfigValue(raw)))
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	cmd.Println(configStore.Path())
	return nil
}

// parseConfigValue converts CLI input to a typed value so numeric and
// boolean settings round-trip through the TOML store unquoted. Integers
// are tried before booleans so "1" and "0" stay numeric.
func parseConfigValue(raw string) any {
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

// displayValue formats a value for terminal output, masking secrets.
func displayValue(key string, value any) string {
	s := fmt.Sprintf("%v", value)
	if s == "" {
		return "(empty)"
	}
	if strings.Contains(key, "api_key") || strings.Contains(key, "password") {
		return maskAPIKey(s)
	}
	return s
}

// shortKey strips the section prefix for display inside a section block.
func shortKey(key string) string {
	if idx := strings.IndexByte(key, '.'); idx >= 0 {
		return key[idx+1:]
	}
	return key
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
