package cli

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/selfstate-engine/internal/bus"
	"github.com/danielpatrickdp/selfstate-engine/internal/collective"
	"github.com/danielpatrickdp/selfstate-engine/internal/collector"
	"github.com/danielpatrickdp/selfstate-engine/internal/config"
	"github.com/danielpatrickdp/selfstate-engine/internal/engine"
	"github.com/danielpatrickdp/selfstate-engine/internal/fsm"
	"github.com/danielpatrickdp/selfstate-engine/internal/intervene"
	"github.com/danielpatrickdp/selfstate-engine/internal/profile"
	"github.com/danielpatrickdp/selfstate-engine/internal/store"
)

var (
	flagCollective string
	flagProfile    string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the engine with an interactive event console",
	Long: `Starts the engine's periodic tasks and reads simple event commands
from stdin. Commands:

  key <char>        record a key_down/key_up pair
  back              record a Backspace key_down
  move <x> <y>      record a pointer_move
  blur | focus      record focus_lost / focus_gained
  break [minutes]   start a break
  endbreak          end the running break early
  discover <intervention> <helped|no_change|worse>
  consent <on|off>  toggle collective sharing
  status            print state, energy, predictions, insights
  quit`,
}

func init() {
	runCmd.RunE = runRun
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&flagCollective, "collective", envOr("SELFSTATE_COLLECTIVE", ""), "Collective backend base URL (empty = local-only)")
	runCmd.Flags().StringVar(&flagProfile, "profile", "", "Cognitive profile type to persist before starting")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	st, err := store.NewStore(flagDB, cfg.Classifier.TransitionLogCap)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	if flagProfile != "" {
		if err := st.SetProfile(profile.Profile{Type: profile.Type(flagProfile)}); err != nil {
			return fmt.Errorf("set profile: %w", err)
		}
	}

	var sync *collective.Client
	if flagCollective != "" {
		sync = collective.NewClient(flagCollective)
	}

	events := bus.New()
	subscribeConsole(events)

	eng := engine.New(cfg, st, events, sync)
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	eng.Start(ctx)
	defer eng.Close()

	fmt.Println("Self-state engine running. Type 'help' for commands.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil
		}
		if err := handleCommand(eng, line); err != nil {
			log.Printf("[CLI] %v", err)
		}
	}
}

// subscribeConsole prints engine notifications — the stand-in for the UI
// layer's subscriptions.
func subscribeConsole(events *bus.Bus) {
	events.Subscribe(bus.TopicStateChanged, func(ev bus.Event) {
		if c, ok := ev.Payload.(fsm.StateChanged); ok {
			fmt.Printf("\n[state] %s → %s (actions: %v)\n", c.From, c.To, c.Actions)
		}
	})
	events.Subscribe(bus.TopicNudge, func(ev bus.Event) {
		if n, ok := ev.Payload.(intervene.Nudge); ok {
			fmt.Printf("\n[nudge] %s (energy %d)\n", n.Message, n.Level)
		}
	})
	events.Subscribe(bus.TopicBreakComplete, func(ev bus.Event) {
		fmt.Println("\n[break] done")
	})
	events.Subscribe(bus.TopicBreakSuggested, func(ev bus.Event) {
		fmt.Println("\n[suggestion] it's been a while — take a break?")
	})
}

func handleCommand(eng *engine.Engine, line string) error {
	fields := strings.Fields(line)
	now := time.Now()

	switch fields[0] {
	case "help":
		fmt.Println(runCmd.Long)
	case "key":
		key := "a"
		if len(fields) > 1 {
			key = fields[1]
		}
		eng.RecordEvent(collector.Event{Type: collector.EventKeyDown, Key: key, Timestamp: now})
		eng.RecordEvent(collector.Event{Type: collector.EventKeyUp, Key: key, Timestamp: now.Add(50 * time.Millisecond)})
	case "back":
		eng.RecordEvent(collector.Event{Type: collector.EventKeyDown, Key: "Backspace", Timestamp: now})
	case "move":
		if len(fields) < 3 {
			return fmt.Errorf("usage: move <x> <y>")
		}
		x, _ := strconv.ParseFloat(fields[1], 64)
		y, _ := strconv.ParseFloat(fields[2], 64)
		eng.RecordEvent(collector.Event{Type: collector.EventPointerMove, X: x, Y: y, Timestamp: now})
	case "blur":
		eng.RecordEvent(collector.Event{Type: collector.EventFocusLost, Timestamp: now})
	case "focus":
		eng.RecordEvent(collector.Event{Type: collector.EventFocusGained, Timestamp: now})
	case "break":
		minutes := 0
		if len(fields) > 1 {
			minutes, _ = strconv.Atoi(fields[1])
		}
		eng.Dispatcher().StartBreak(minutes)
	case "endbreak":
		eng.Dispatcher().EndBreak()
	case "discover":
		if len(fields) < 3 {
			return fmt.Errorf("usage: discover <intervention> <helped|no_change|worse>")
		}
		effect := 0.0
		switch fields[2] {
		case "helped":
			effect = 0.5
		case "worse":
			effect = -0.5
		}
		p, err := eng.RecordDiscovery(fields[1], fields[2], effect, fields[3:])
		if err != nil {
			return err
		}
		fmt.Printf("recorded pattern %s\n", p.ID)
	case "consent":
		if len(fields) < 2 {
			return fmt.Errorf("usage: consent <on|off>")
		}
		return eng.SetConsent(fields[1] == "on")
	case "status":
		fmt.Printf("state:  %s\nenergy: %d\n", eng.CurrentState(), eng.Energy())
		for _, p := range eng.Predictions() {
			fmt.Printf("predict: %+v\n", p)
		}
		for _, ins := range eng.Insights() {
			fmt.Printf("insight: %.2f %s\n", ins.Score, ins.Insight.Text)
		}
	default:
		return fmt.Errorf("unknown command %q", fields[0])
	}
	return nil
}
