package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// DocSourceRef represents a source message reference on a documentation entry.
type DocSourceRef struct {
	MessageID   string `json:"id"`
	ChannelID   string `json:"channel_id,omitempty"`
	ChannelName string `json:"channel"`
	Username    string `json:"username"`
}

// DocEntry represents a documentation entry.
type DocEntry struct {
	ID             string         `json:"id"`
	Question       string         `json:"question"`
	Answer         string         `json:"answer"`
	SourceMessages []DocSourceRef `json:"source_messages"`
	CreatedAt      string         `json:"created_at"`
	UpdatedAt      string         `json:"updated_at"`
}

// DocListResponse represents the documentation list API response.
type DocListResponse struct {
	Items   []DocEntry `json:"items"`
	Cursor  string     `json:"cursor,omitempty"`
	HasMore bool       `json:"has_more"`
}

// DocsCmd creates the docs command.
func DocsCmd() *cobra.Command {
	var (
		limit  int
		cursor string
	)

	cmd := &cobra.Command{
		Use:   "docs [id]",
		Short: "List or show saved documentation entries",
		Long:  "Lists documentation entries saved from answered questions, or shows one entry by ID.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			if len(args) == 1 {
				return runDocsGet(args[0], outputJSON)
			}
			return runDocsList(limit, cursor, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")

	return cmd
}

func runDocsGet(id string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Get("/documentation/" + url.PathEscape(id))
	if err != nil {
		return fmt.Errorf("failed to get documentation entry: %w", err)
	}

	var entry DocEntry
	if err := json.Unmarshal(resp.Data, &entry); err != nil {
		return fmt.Errorf("failed to parse documentation entry: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(entry, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	printDocEntry(entry)
	return nil
}

func runDocsList(limit int, cursor string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if cursor != "" {
		query.Set("cursor", cursor)
	}

	path := "/documentation"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	resp, err := api.Get(path)
	if err != nil {
		return fmt.Errorf("failed to list documentation: %w", err)
	}

	var listResp DocListResponse
	if err := json.Unmarshal(resp.Data, &listResp); err != nil {
		return fmt.Errorf("failed to parse documentation list: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(listResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(listResp.Items) == 0 {
		fmt.Println("No documentation entries.")
		return nil
	}

	for i, entry := range listResp.Items {
		printDocEntry(entry)
		if i < len(listResp.Items)-1 {
			fmt.Println(strings.Repeat("-", 40))
		}
	}
	if listResp.HasMore && listResp.Cursor != "" {
		fmt.Printf("\n%s\n", strings.Repeat("-", 40))
		fmt.Printf("More entries available. Use --cursor %s\n", listResp.Cursor)
	}

	return nil
}

func printDocEntry(entry DocEntry) {
	fmt.Printf("Q: %s\n", entry.Question)
	fmt.Printf("A: %s\n", entry.Answer)
	if len(entry.SourceMessages) > 0 {
		fmt.Printf("Sources: %d message(s)\n", len(entry.SourceMessages))
	}
	fmt.Printf("ID: %s (%s)\n", entry.ID, entry.CreatedAt)
}
