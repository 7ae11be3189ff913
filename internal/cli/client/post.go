package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// PostRequest represents the message create API request.
type PostRequest struct {
	ChannelID string `json:"channel_id,omitempty"`
	UserID    string `json:"user_id"`
	Content   string `json:"content"`
	ParentID  string `json:"parent_id,omitempty"`
}

// PostResponse represents the message create API response.
type PostResponse struct {
	ID           string `json:"id"`
	ChannelID    string `json:"channel_id,omitempty"`
	UserID       string `json:"user_id"`
	Content      string `json:"content"`
	ParentID     string `json:"parent_id,omitempty"`
	ReplyCount   int    `json:"reply_count"`
	HasEmbedding bool   `json:"has_embedding"`
	CreatedAt    string `json:"created_at"`
}

// PostCmd creates the post command.
func PostCmd() *cobra.Command {
	var (
		channelID string
		userID    string
		parentID  string
	)

	cmd := &cobra.Command{
		Use:   "post <content>",
		Short: "Post a message",
		Long:  "Posts a message into a channel, optionally as a reply to another message.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runPost(args[0], channelID, userID, parentID, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&channelID, "channel", "c", "", "Channel ID to post into")
	cmd.Flags().StringVarP(&userID, "user", "u", "", "Profile ID of the author (required)")
	cmd.Flags().StringVar(&parentID, "parent", "", "Parent message ID for threaded replies")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func runPost(content, channelID, userID, parentID string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Post("/messages", PostRequest{
		ChannelID: channelID,
		UserID:    userID,
		Content:   content,
		ParentID:  parentID,
	})
	if err != nil {
		return fmt.Errorf("post failed: %w", err)
	}

	var postResp PostResponse
	if err := json.Unmarshal(resp.Data, &postResp); err != nil {
		return fmt.Errorf("failed to parse message response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(postResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("posted message %s\n", postResp.ID)
	if !postResp.HasEmbedding {
		fmt.Println("embedding pending (will be backfilled)")
	}

	return nil
}
