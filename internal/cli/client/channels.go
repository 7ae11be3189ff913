package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

// Channel represents a channel API response.
type Channel struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// ChannelsCmd creates the channels command.
func ChannelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "channels",
		Short: "List channels",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runChannels(outputJSON)
		},
	}

	cmd.AddCommand(channelMessagesCmd())

	return cmd
}

func runChannels(outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Get("/channels")
	if err != nil {
		return fmt.Errorf("failed to list channels: %w", err)
	}

	var channels []Channel
	if err := json.Unmarshal(resp.Data, &channels); err != nil {
		return fmt.Errorf("failed to parse channel list: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(channels, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(channels) == 0 {
		fmt.Println("No channels.")
		return nil
	}

	for _, c := range channels {
		if c.Description != "" {
			fmt.Printf("%s  %s  %s\n", c.ID, c.Name, c.Description)
		} else {
			fmt.Printf("%s  %s\n", c.ID, c.Name)
		}
	}

	return nil
}

// ChannelMessagesResponse represents the channel messages API response.
type ChannelMessagesResponse struct {
	Items   []PostResponse `json:"items"`
	Cursor  string         `json:"cursor,omitempty"`
	HasMore bool           `json:"has_more"`
}

func channelMessagesCmd() *cobra.Command {
	var (
		limit  int
		cursor string
	)

	cmd := &cobra.Command{
		Use:   "messages <channel-id>",
		Short: "List messages in a channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runChannelMessages(args[0], limit, cursor, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of messages")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")

	return cmd
}

func runChannelMessages(channelID string, limit int, cursor string, outputJSON bool) error {
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

	path := "/channels/" + url.PathEscape(channelID) + "/messages"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	resp, err := api.Get(path)
	if err != nil {
		return fmt.Errorf("failed to list messages: %w", err)
	}

	var listResp ChannelMessagesResponse
	if err := json.Unmarshal(resp.Data, &listResp); err != nil {
		return fmt.Errorf("failed to parse message list: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(listResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(listResp.Items) == 0 {
		fmt.Println("No messages.")
		return nil
	}

	for _, m := range listResp.Items {
		fmt.Printf("[%s] %s: %s\n", m.CreatedAt, m.UserID, m.Content)
	}
	if listResp.HasMore && listResp.Cursor != "" {
		fmt.Printf("\nMore messages available. Use --cursor %s\n", listResp.Cursor)
	}

	return nil
}
