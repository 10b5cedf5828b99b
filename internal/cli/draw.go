package cli

import (
	"github.com/spf13/cobra"
)

func newDrawCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draw",
		Short: "Elimination draw commands",
	}

	cmd.AddCommand(newDrawStatusCmd())
	cmd.AddCommand(newDrawSpinCmd())
	cmd.AddCommand(newDrawDecideCmd())
	cmd.AddCommand(newDrawResetCmd())

	return cmd
}

func newDrawStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current draw state",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result DrawStatus

			if err := client.Get("/api/v1/draw", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newDrawSpinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "spin",
		Short: "Spin the wheel and select a participant (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Spin

			if err := client.Post("/api/v1/admin/draw/spin", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newDrawDecideCmd() *cobra.Command {
	var decision string

	cmd := &cobra.Command{
		Use:   "decide",
		Short: "Decide the pending selection (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"decision": decision}
			var result Participant

			if err := client.Post("/api/v1/admin/draw/decide", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&decision, "decision", "", "Decision: winner or discarded (required)")
	_ = cmd.MarkFlagRequired("decision")

	return cmd
}

func newDrawResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Reset the round, reactivating everyone (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Reset

			if err := client.Post("/api/v1/admin/draw/reset", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
