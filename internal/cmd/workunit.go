package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gravitrone/sprayctl/internal/spray"
)

// WorkunitCmd returns the `sprayctl workunit` command group.
func WorkunitCmd() *cobra.Command {
	var conn Connection
	cmd := &cobra.Command{
		Use:     "workunit",
		Aliases: []string{"wu"},
		Short:   "Inspect DFU workunits",
	}
	conn.AddFlags(cmd)
	cmd.AddCommand(workunitGetCmd(&conn))
	return cmd
}

func workunitGetCmd(conn *Connection) *cobra.Command {
	var (
		wait  bool
		every time.Duration
	)
	cmd := &cobra.Command{
		Use:   "get <wuid>",
		Short: "Show the status of a DFU workunit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, client, err := conn.session(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			wuid := args[0]

			wu, err := client.GetDFUWorkunit(ctx, wuid)
			if err != nil {
				return fmt.Errorf("get workunit: %w", err)
			}
			if wait && !wu.Finished() {
				if wu, err = waitWorkunit(ctx, client, wuid, every); err != nil {
					return fmt.Errorf("wait workunit: %w", err)
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "id:       %s\n", wu.ID)
			fmt.Fprintf(out, "state:    %s\n", describeWorkunit(wu))
			if wu.SourceLogicalName != "" {
				fmt.Fprintf(out, "source:   %s\n", wu.SourceLogicalName)
			}
			if wu.DestLogicalName != "" {
				fmt.Fprintf(out, "target:   %s\n", wu.DestLogicalName)
			}
			if wu.DestGroupName != "" {
				fmt.Fprintf(out, "group:    %s\n", wu.DestGroupName)
			}
			if wu.Queue != "" {
				fmt.Fprintf(out, "queue:    %s\n", wu.Queue)
			}
			fmt.Fprintf(out, "url:      %s\n", spray.WorkunitURL(cfg.ESPURL, wuid))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "poll until the workunit finishes")
	cmd.Flags().DurationVar(&every, "poll-interval", 2*time.Second, "poll interval with --wait")
	return cmd
}
