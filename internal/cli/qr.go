package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newQRCmd() *cobra.Command {
	var outFile string
	var size int

	cmd := &cobra.Command{
		Use:   "qr",
		Short: "Download the registration QR code",
		RunE: func(cmd *cobra.Command, args []string) error {
			png, err := client.GetRaw(fmt.Sprintf("/api/v1/qr?size=%d", size))
			if err != nil {
				return err
			}

			if err := os.WriteFile(outFile, png, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", outFile, err)
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage(fmt.Sprintf("QR code saved to %s", outFile))
			return nil
		},
	}

	cmd.Flags().StringVar(&outFile, "file", "qr.png", "Output file path")
	cmd.Flags().IntVar(&size, "size", 256, "Image size in pixels")

	return cmd
}
