package admin

import (
	"context"
	"fmt"

	"github.com/cloo-solutions/recallai/internal/config"
	"github.com/cloo-solutions/recallai/internal/database"
	"github.com/cloo-solutions/recallai/internal/repository"
	"github.com/cloo-solutions/recallai/internal/service"
	"github.com/spf13/cobra"
)

// ChannelCmd returns the channel management command
func ChannelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "channel",
		Short: "Manage channels",
	}

	cmd.AddCommand(channelCreateCmd())
	cmd.AddCommand(channelListCmd())

	return cmd
}

func channelCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a channel",
		Args:  cobra.ExactArgs(1),
		RunE:  runChannelCreate,
	}

	cmd.Flags().StringP("description", "d", "", "Channel description")

	return cmd
}

func channelListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List channels",
		RunE:  runChannelList,
	}
}

func newChannelService(ctx context.Context) (*service.ChannelService, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	svc := service.NewChannelService(repository.NewChannelRepository(pool))
	return svc, pool.Close, nil
}

func runChannelCreate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	svc, cleanup, err := newChannelService(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	description, _ := cmd.Flags().GetString("description")

	channel, err := svc.Create(ctx, service.CreateChannelInput{
		Name:        args[0],
		Description: description,
	})
	if err != nil {
		return fmt.Errorf("failed to create channel: %w", err)
	}

	fmt.Printf("created channel '%s' (id: %s)\n", channel.Name, channel.ID)
	return nil
}

func runChannelList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	svc, cleanup, err := newChannelService(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	channels, err := svc.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list channels: %w", err)
	}

	if len(channels) == 0 {
		fmt.Println("no channels")
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
