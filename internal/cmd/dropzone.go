package cmd

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
)

// DropzoneCmd returns the `sprayctl dropzone` command group.
func DropzoneCmd() *cobra.Command {
	var conn Connection
	cmd := &cobra.Command{
		Use:     "dropzone",
		Aliases: []string{"dz"},
		Short:   "Browse landing zones",
	}
	conn.AddFlags(cmd)
	cmd.AddCommand(dropzoneListCmd(&conn))
	return cmd
}

func dropzoneListCmd(conn *Connection) *cobra.Command {
	var (
		zoneName string
		match    string
	)
	cmd := &cobra.Command{
		Use:   "ls [dir]",
		Short: "List landing zones, or the files of one zone",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, client, err := conn.session(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			ctx := cmd.Context()

			if zoneName == "" {
				listing, err := client.DropZoneFiles(ctx, "", "")
				if err != nil {
					return fmt.Errorf("list landing zones: %w", err)
				}
				if len(listing.DropZones) == 0 {
					fmt.Fprintln(out, "no landing zones found")
					return nil
				}
				for _, z := range listing.DropZones {
					fmt.Fprintf(out, "  %s  %s  %s\n", z.Name, z.NetAddress, z.Path)
				}
				return nil
			}

			if match != "" && !doublestar.ValidatePattern(match) {
				return fmt.Errorf("invalid --match pattern %q", match)
			}
			zone, err := findZone(ctx, client, zoneName)
			if err != nil {
				return err
			}
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			entries, err := walkZone(ctx, client, zone, dir, globDescends(match))
			if err != nil {
				return err
			}
			shown := 0
			for _, e := range entries {
				if match != "" {
					if ok, _ := doublestar.Match(match, e.rel); !ok {
						continue
					}
				}
				fmt.Fprintf(out, "  %10d  %s\n", e.file.FileSize, e.rel)
				shown++
			}
			if shown == 0 {
				fmt.Fprintln(out, "no files found")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&zoneName, "zone", "", "landing zone name or address")
	cmd.Flags().StringVar(&match, "match", "", "glob filter (supports **)")
	return cmd
}
