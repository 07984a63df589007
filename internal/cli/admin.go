package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/spyword/internal/api/request"
	"github.com/mcoot/spyword/internal/api/response"
	"github.com/mcoot/spyword/internal/model"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Admin commands (require --admin-secret)",
	}

	cmd.AddCommand(newAdminSettingsCmd())
	cmd.AddCommand(newAdminWordsCmd())

	return cmd
}

func newAdminSettingsCmd() *cobra.Command {
	var minPlayers int
	var showHint bool

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change game settings",
		Long: `Without flags, show the current settings. With flags, change them.
Changes apply from the next session start.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Settings

			var req request.UpdateSettingsRequest
			if cmd.Flags().Changed("min-players") {
				req.MinPlayersToStart = &minPlayers
			}
			if cmd.Flags().Changed("show-hint") {
				req.ShowHintToRegulars = &showHint
			}

			var err error
			if req.MinPlayersToStart == nil && req.ShowHintToRegulars == nil {
				err = client.Get("/api/v1/admin/settings", &result)
			} else {
				err = client.Put("/api/v1/admin/settings", req, &result)
			}
			if err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&minPlayers, "min-players", 0, "Members required before a host can start")
	cmd.Flags().BoolVar(&showHint, "show-hint", false, "Show the hint to regular players")

	return cmd
}

func newAdminWordsCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "words",
		Short: "Show or replace the word list",
		Long: `Without --file, show the active word list. With --file, replace it with
a JSON array of {"word": ..., "hints": [...]} entries.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Words

			if file == "" {
				if err := client.Get("/api/v1/admin/words", &result); err != nil {
					return err
				}
			} else {
				data, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				var entries []model.WordEntry
				if err := json.Unmarshal(data, &entries); err != nil {
					return fmt.Errorf("failed to parse %s: %w", file, err)
				}
				if err := client.Put("/api/v1/admin/words", request.ReplaceWordsRequest{Words: entries}, &result); err != nil {
					return err
				}
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON word list to upload")

	return cmd
}
