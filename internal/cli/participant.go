package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newParticipantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "participant",
		Short: "Participant management commands",
	}

	cmd.AddCommand(newParticipantRegisterCmd())
	cmd.AddCommand(newParticipantListCmd())
	cmd.AddCommand(newParticipantGetCmd())
	cmd.AddCommand(newParticipantStatsCmd())
	cmd.AddCommand(newParticipantDeleteCmd())
	cmd.AddCommand(newParticipantStatusCmd())
	cmd.AddCommand(newParticipantResetCmd())
	cmd.AddCommand(newParticipantClearCmd())

	return cmd
}

func newParticipantRegisterCmd() *cobra.Command {
	var username, team string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new participant",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"username": username,
				"team":     team,
			}
			var result Participant

			if err := client.Post("/api/v1/participants", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username (required)")
	cmd.Flags().StringVar(&team, "team", "", "Team: blue, yellow or red (required)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("team")

	return cmd
}

func newParticipantListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all participants",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Snapshot

			if err := client.Get("/api/v1/participants", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newParticipantGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a participant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Participant

			if err := client.Get("/api/v1/participants/"+args[0], &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newParticipantStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate participant counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Stats

			if err := client.Get("/api/v1/stats", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newParticipantDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a participant (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete("/api/v1/admin/participants/" + args[0]); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Participant deleted")
			return nil
		},
	}
}

func newParticipantStatusCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "status <id>",
		Short: "Update a participant's status (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"status": status}
			var result Participant

			if err := client.Patch("/api/v1/admin/participants/"+args[0]+"/status", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Status: active, winner or discarded (required)")
	_ = cmd.MarkFlagRequired("status")

	return cmd
}

func newParticipantResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Return every participant to active (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Reset

			if err := client.Post("/api/v1/admin/participants/reset", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newParticipantClearCmd() *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all participants (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return fmt.Errorf("refusing to clear the registry without --yes")
			}

			if err := client.Delete("/api/v1/admin/participants"); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Registry cleared")
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirm, "yes", false, "Confirm clearing every participant")

	return cmd
}
