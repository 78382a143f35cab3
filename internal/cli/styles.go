package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"mindmap/internal/domain"
)

func stylesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "styles",
		Short: "List the connection styles",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			banner(w, "connection styles")

			rows := make([][]string, 0, len(domain.Styles()))
			for _, s := range domain.Styles() {
				rows = append(rows, []string{
					string(s.ID),
					s.Label,
					s.Description,
					s.Stroke,
					strconv.Itoa(s.StrokeWidth),
				})
			}
			table(w, []string{"ID", "LABEL", "DESCRIPTION", "STROKE", "WIDTH"}, rows)

			fmt.Fprintln(w)
			subtle.Fprintln(w, "  Select a style, then drag from one topic's handle to another to connect them.")
			subtle.Fprintln(w, "  The style is fixed when the connection is made.")
		},
	}
}
