package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

type divisionFlags struct {
	league   int64
	season   int64
	division int64
}

func newSyncCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run a sync once and print its result as JSON",
	}
	cmd.AddCommand(
		newSyncFullCmd(opts),
		newSyncDivisionCmd(opts),
		newSyncTeamCmd(opts),
	)
	return cmd
}

func newSyncFullCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "full",
		Short: "Sync every league, season and division on the league list",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(opts)
			if err != nil {
				return err
			}
			defer a.close()

			result := a.sync.RunFullSync(cmd.Context())
			if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
			if !result.Success {
				return errSyncUnsuccessful
			}
			return nil
		},
	}
}

func newSyncDivisionCmd(opts *rootOptions) *cobra.Command {
	flags := &divisionFlags{}
	cmd := &cobra.Command{
		Use:   "division",
		Short: "Resync the standings and fixtures of one known division",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.league <= 0 || flags.season <= 0 || flags.division <= 0 {
				return fmt.Errorf("--league, --season and --division must be positive ids")
			}
			a, err := bootstrap(opts)
			if err != nil {
				return err
			}
			defer a.close()

			result, syncErr := a.sync.SyncSingleDivision(cmd.Context(), flags.league, flags.season, flags.division)
			if result != nil {
				if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
					return fmt.Errorf("writing output: %w", err)
				}
			}
			return syncErr
		},
	}
	cmd.Flags().Int64Var(&flags.league, "league", 0, "Upstream LeagueId (required)")
	cmd.Flags().Int64Var(&flags.season, "season", 0, "Upstream SeasonId (required)")
	cmd.Flags().Int64Var(&flags.division, "division", 0, "Upstream DivisionId (required)")
	cmd.MarkFlagRequired("league")
	cmd.MarkFlagRequired("season")
	cmd.MarkFlagRequired("division")
	return cmd
}

func newSyncTeamCmd(opts *rootOptions) *cobra.Command {
	var team int64
	cmd := &cobra.Command{
		Use:   "team",
		Short: "Merge one team's profile page into stored fixtures",
		RunE: func(cmd *cobra.Command, args []string) error {
			if team <= 0 {
				return fmt.Errorf("--team must be a positive id")
			}
			a, err := bootstrap(opts)
			if err != nil {
				return err
			}
			defer a.close()

			result, err := a.sync.SyncTeamProfile(cmd.Context(), team)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().Int64Var(&team, "team", 0, "Upstream TeamId (required)")
	cmd.MarkFlagRequired("team")
	return cmd
}
