package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/application"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/identity"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/transport/wire"
)

func newConversationsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "conversations <email>",
		Short: "List a participant's conversation index, most recent first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := identity.New(args[0], "")
			if err != nil {
				return err
			}
			return withService(cmd.Context(), flags, func(svc *application.Service) error {
				summaries, report, err := svc.ListConversations(cmd.Context(), p)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), wire.NewConversationList(summaries, report))
			})
		},
	}
}

func newMessagesCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "messages <conversation-id>",
		Short: "Print the message log of a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := identity.New(flags.as, "")
			if err != nil {
				return err
			}
			return withService(cmd.Context(), flags, func(svc *application.Service) error {
				msgs, report, err := svc.ListMessages(cmd.Context(), p, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), wire.NewMessageList(msgs, report))
			})
		},
	}
}

func newRepairCmd(flags *globalFlags) *cobra.Command {
	var peerName string

	cmd := &cobra.Command{
		Use:   "repair <email> <peer-email> <conversation-id>",
		Short: "Rebuild a participant's summary of a conversation from its log",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := identity.New(args[0], "")
			if err != nil {
				return err
			}
			peer, err := identity.New(args[1], peerName)
			if err != nil {
				return err
			}
			return withService(cmd.Context(), flags, func(svc *application.Service) error {
				summary, err := svc.Repair(cmd.Context(), application.RepairCommand{
					Participant:    p,
					Peer:           peer,
					ConversationID: args[2],
				})
				if err != nil {
					return fmt.Errorf("repair %s for %s: %w", args[2], p.Email, err)
				}
				return printJSON(cmd.OutOrStdout(), wire.FromSummary(*summary))
			})
		},
	}
	cmd.Flags().StringVar(&peerName, "peer-name", "", "display name to use when neither the log nor the directory has one")
	return cmd
}

func newUsersCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List the user directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), flags, func(svc *application.Service) error {
				entries, report, err := svc.ListUsers(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), wire.NewUserList(entries, report))
			})
		},
	}
}
