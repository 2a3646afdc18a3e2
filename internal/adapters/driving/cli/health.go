package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check component health",
	Long:  `Pings the embedder, vector store, and LLM and reports each component's state.`,
	RunE:  runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, _ []string) error {
	if statsService == nil {
		return errors.New("stats service not configured")
	}

	ctx := context.Background()

	components := statsService.Health(ctx)

	down := 0
	for _, c := range components {
		state := "OK"
		if !c.OK {
			state = "FAIL"
			down++
		}
		cmd.Printf("  %-12s %-4s %s\n", c.Name, state, c.Detail)
	}

	if down > 0 {
		return fmt.Errorf("%d of %d components unhealthy", down, len(components))
	}

	cmd.Println("\nAll components healthy.")
	return nil
}
