package cli

import (
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/spyword/internal/api/response"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Session inspection commands",
	}

	cmd.AddCommand(newSessionGetCmd())
	cmd.AddCommand(newSessionQRCmd())

	return cmd
}

func newSessionGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <code>",
		Short: "Show the public summary of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.SessionSummary

			if err := client.Get("/api/v1/sessions/"+url.PathEscape(args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newSessionQRCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "qr <code>",
		Short: "Download the join QR code of a session as PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			png, err := client.Raw(http.MethodGet, "/api/v1/sessions/"+url.PathEscape(args[0])+"/qr.png", nil)
			if err != nil {
				return err
			}

			path := file
			if path == "" {
				path = args[0] + ".png"
			}
			if err := os.WriteFile(path, png, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.PrintMessage("Saved QR code to " + path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Output file (default: <code>.png)")

	return cmd
}
