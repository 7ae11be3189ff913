package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// AskRequest represents the answer API request.
type AskRequest struct {
	Query string `json:"query"`
}

// AskTimeRange represents the time span covered by the answer's sources.
type AskTimeRange struct {
	Earliest string `json:"earliest"`
	Latest   string `json:"latest"`
}

// AskResponse represents the answer API response.
type AskResponse struct {
	HasAnswer   bool          `json:"has_answer"`
	Answer      string        `json:"answer,omitempty"`
	SourceCount int           `json:"source_count,omitempty"`
	SourceType  string        `json:"source_type,omitempty"`
	TimeRange   *AskTimeRange `json:"time_range,omitempty"`
}

// AskCmd creates the ask command.
func AskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question against the knowledge base",
		Long:  "Searches team messages and documentation for an answer to the question.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runAsk(args[0], outputJSON)
		},
	}
}

func runAsk(query string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Post("/preflight/answer", AskRequest{Query: query})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	var askResp AskResponse
	if err := json.Unmarshal(resp.Data, &askResp); err != nil {
		return fmt.Errorf("failed to parse answer response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(askResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if !askResp.HasAnswer {
		fmt.Println("No answer found.")
		return nil
	}

	fmt.Println(askResp.Answer)
	fmt.Printf("\nSources: %d (%s)\n", askResp.SourceCount, askResp.SourceType)
	if askResp.TimeRange != nil {
		fmt.Printf("From: %s to %s\n", askResp.TimeRange.Earliest, askResp.TimeRange.Latest)
	}

	return nil
}
