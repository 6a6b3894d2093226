package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/selfstate-engine/internal/config"
	"github.com/danielpatrickdp/selfstate-engine/internal/replay"
)

var replayCmd = &cobra.Command{
	Use:   "replay <fixture.json>",
	Short: "Replay a recorded event fixture through the classifier",
	Args:  cobra.ExactArgs(1),
	RunE:  runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	fixture, err := replay.LoadFixture(args[0])
	if err != nil {
		return err
	}

	res := replay.Run(fixture, cfg.Collector, cfg.Classifier)

	fmt.Printf("events: %d replayed, %d dropped\n", res.EventsReplayed, res.EventsDropped)
	fmt.Printf("final state: %s\n\ntransitions (%d):\n", res.FinalState, len(res.Transitions))
	for _, t := range res.Transitions {
		fmt.Printf("  %s  %s → %s\n", t.At.Format(time.RFC3339), t.From, t.To)
	}
	fmt.Println("\ntime in state:")
	for state, d := range res.TimeInState {
		if d > 0 {
			fmt.Printf("  %-12s %s\n", state, d.Round(time.Second))
		}
	}
	return nil
}
