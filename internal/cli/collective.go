package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/selfstate-engine/internal/collective"
)

var collectiveAddr string

var collectiveCmd = &cobra.Command{
	Use:   "collective",
	Short: "Run the collective pattern-exchange backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		srv := collective.NewServer()
		fmt.Printf("collective backend listening on %s\n", collectiveAddr)
		return srv.ListenAndServe(collectiveAddr)
	},
}

func init() {
	rootCmd.AddCommand(collectiveCmd)
	collectiveCmd.Flags().StringVar(&collectiveAddr, "addr", envOr("SELFSTATE_COLLECTIVE_ADDR", ":8477"), "Listen address")
}
