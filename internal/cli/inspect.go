package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/selfstate-engine/internal/config"
	"github.com/danielpatrickdp/selfstate-engine/internal/predict"
	"github.com/danielpatrickdp/selfstate-engine/internal/store"
)

var inspectLimit int

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Dump persisted engine state and recomputed predictions",
	RunE:  runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().IntVar(&inspectLimit, "limit", 10, "Rows to show per section")
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	st, err := store.NewStore(flagDB, cfg.Classifier.TransitionLogCap)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	prof := st.Profile()
	fmt.Printf("profile: %s\nconsent: %v\n\n", prof.Type, st.Consent())

	transitions, err := st.ListTransitions(inspectLimit)
	if err != nil {
		return err
	}
	fmt.Printf("recent transitions (%d):\n", len(transitions))
	for _, t := range transitions {
		fmt.Printf("  %s  %s → %s\n", t.At.Format(time.RFC3339), t.From, t.To)
	}

	history, err := st.ListObservationsSince(time.Now().Add(-cfg.Temporal.Retention))
	if err != nil {
		return err
	}
	fmt.Printf("\nobservations retained: %d\n", len(history))
	start := len(history) - inspectLimit
	if start < 0 {
		start = 0
	}
	for _, o := range history[start:] {
		fmt.Printf("  %s  cog=%d emo=%d phy=%d soc=%d cre=%d\n",
			o.At.Format(time.RFC3339),
			o.Vector.Cognitive, o.Vector.Emotional, o.Vector.Physical,
			o.Vector.Social, o.Vector.Creative)
	}

	preds := predict.NewEngine(cfg.Predict).Run(history)
	fmt.Printf("\npredictions (%d):\n", len(preds))
	for _, p := range preds {
		switch p.Kind {
		case predict.KindCrashWarning:
			fmt.Printf("  crash warning: p=%.2f within %s\n", p.Probability, p.Timeframe)
		case predict.KindFlowOpportunity:
			for _, w := range p.Windows {
				fmt.Printf("  flow window: %s (likelihood %.2f)\n", w.Label, w.Likelihood)
			}
		case predict.KindPatternInsight:
			fmt.Printf("  pattern: %s (%.2f)\n", p.Description, p.Confidence)
		}
	}

	patterns, err := st.ListPatterns()
	if err != nil {
		return err
	}
	fmt.Printf("\nlocal patterns: %d\n", len(patterns))
	for _, p := range patterns {
		fmt.Printf("  %s  %s → %s (effect %.2f)\n", p.At.Format(time.RFC3339), p.Intervention, p.Outcome, p.EffectSize)
	}
	return nil
}
