package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// CheckRequest represents the question check API request.
type CheckRequest struct {
	Text string `json:"text"`
}

// CheckResponse represents the question check API response.
type CheckResponse struct {
	IsQuestion bool   `json:"is_question"`
	Confidence string `json:"confidence"`
	Method     string `json:"method"`
}

// CheckCmd creates the check command.
func CheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <text>",
		Short: "Check whether a piece of text is a question",
		Long:  "Runs the question classifier on the given text and reports the verdict.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runCheck(args[0], outputJSON)
		},
	}
}

func runCheck(text string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Post("/preflight/check", CheckRequest{Text: text})
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	var checkResp CheckResponse
	if err := json.Unmarshal(resp.Data, &checkResp); err != nil {
		return fmt.Errorf("failed to parse check response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(checkResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if checkResp.IsQuestion {
		fmt.Println("Question: yes")
	} else {
		fmt.Println("Question: no")
	}
	fmt.Printf("Confidence: %s\n", checkResp.Confidence)
	fmt.Printf("Method: %s\n", checkResp.Method)

	return nil
}
