package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"gridworld"
)

var (
	layoutPath   string        // Path to a YAML world layout; flags below are ignored when set
	width        int           // Grid width
	height       int           // Grid height
	maxTicks     int           // Maximum tick count (0 = unbounded)
	tickInterval time.Duration // Real-time pacing between ticks
	numAgents    int           // Number of random-walk agents to spawn
	numExplorers int           // Number of exploring agents to spawn
	listenAddr   string        // Monitor HTTP listen address
	logLevel     string        // Log verbosity level
	seed         int64         // Random seed (0 = time-based)
	geminiConfig string        // Credentials file for the Gemini fallback policy
	useGemini    bool          // Use the Gemini policy for finished/plain agents
)

var rootCmd = &cobra.Command{
	Use:   "gridworld-server",
	Short: "Runs a grid world simulation and serves snapshots to monitors",
}

func init() {
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return run()
	}
	rootCmd.Flags().StringVar(&layoutPath, "layout", "", "YAML world layout file")
	rootCmd.Flags().IntVar(&width, "width", 10, "grid width")
	rootCmd.Flags().IntVar(&height, "height", 10, "grid height")
	rootCmd.Flags().IntVar(&maxTicks, "max-ticks", 700, "maximum tick count, 0 for unbounded")
	rootCmd.Flags().DurationVar(&tickInterval, "tick-interval", 100*time.Millisecond, "pacing between ticks")
	rootCmd.Flags().IntVar(&numAgents, "agents", 0, "number of random-walk agents")
	rootCmd.Flags().IntVar(&numExplorers, "explorers", 1, "number of exploring agents")
	rootCmd.Flags().StringVar(&listenAddr, "listen", ":8080", "monitor listen address")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.Flags().Int64Var(&seed, "seed", 0, "random seed, 0 for time-based")
	rootCmd.Flags().StringVar(&geminiConfig, "gemini-config", "", "YAML file with gemini_api_key")
	rootCmd.Flags().BoolVar(&useGemini, "gemini", false, "use the Gemini policy for non-exploring decisions")
}

func run() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	logrus.SetLevel(level)

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	logrus.Infof("random seed %d", seed)

	layout := &gridworld.Layout{
		Width:        width,
		Height:       height,
		MaxTicks:     maxTicks,
		TickInterval: gridworld.Duration(tickInterval),
	}
	if layoutPath != "" {
		layout, err = gridworld.LoadLayout(layoutPath)
		if err != nil {
			return err
		}
		// A layout that names its own agents replaces the default explorer.
		if len(layout.Agents) > 0 && !rootCmd.Flags().Changed("explorers") {
			numExplorers = 0
		}
	}

	monitor := NewMonitor(listenAddr)
	opts := append(layout.Options(),
		gridworld.WithRand(rng),
		gridworld.WithObserver(monitor.Publish),
	)
	world, err := gridworld.NewWorld(layout.Height, layout.Width, opts...)
	if err != nil {
		return err
	}

	fallback, err := buildFallbackPolicy(rng)
	if err != nil {
		return err
	}
	if err := spawnAgents(world, layout, rng, fallback); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := monitor.Serve(); err != nil {
			logrus.Errorf("monitor: %v", err)
			stop()
		}
	}()

	logrus.Info("simulation starting")
	runErr := world.Run(ctx, 0)
	if errors.Is(runErr, context.Canceled) {
		logrus.Info("simulation stopped")
		runErr = nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := monitor.Shutdown(shutdownCtx); err != nil {
		logrus.Warnf("monitor shutdown: %v", err)
	}
	return runErr
}

// buildFallbackPolicy wires the Gemini policy when requested and a key is
// available; otherwise agents keep their built-in random fallback.
func buildFallbackPolicy(rng *rand.Rand) (gridworld.Policy, error) {
	if !useGemini {
		return nil, nil
	}
	key := gridworld.ResolveGeminiKey(geminiConfig)
	if key == "" {
		logrus.Warn("no Gemini API key configured, using random fallback")
		return &gridworld.RandomPolicy{Rand: rng}, nil
	}
	return gridworld.NewGeminiPolicy(context.Background(), key)
}

// spawnAgents places the layout's agents, plus any requested counts of
// generated explorers and random walkers.
func spawnAgents(world *gridworld.World, layout *gridworld.Layout, rng *rand.Rand, fallback gridworld.Policy) error {
	agentOpts := func(explorer bool) []gridworld.AgentOption {
		opts := []gridworld.AgentOption{gridworld.WithAgentRand(rng)}
		if explorer {
			opts = append(opts, gridworld.WithExploration())
		}
		if fallback != nil {
			opts = append(opts, gridworld.WithPolicy(fallback))
		}
		return opts
	}

	for _, spec := range layout.Agents {
		agent := gridworld.NewAgent(spec.Name, agentOpts(spec.Explorer)...)
		if err := world.AddAgent(agent, spec.X, spec.Y); err != nil {
			return err
		}
	}
	for i := 0; i < numExplorers; i++ {
		if err := spawnRandom(world, fmt.Sprintf("explorer%d", i+1), agentOpts(true)); err != nil {
			return err
		}
	}
	for i := 0; i < numAgents; i++ {
		if err := spawnRandom(world, fmt.Sprintf("agent%d", i+1), agentOpts(false)); err != nil {
			return err
		}
	}
	return nil
}

func spawnRandom(world *gridworld.World, name string, opts []gridworld.AgentOption) error {
	pos, err := world.RandomFreeCell()
	if err != nil {
		return err
	}
	return world.AddAgent(gridworld.NewAgent(name, opts...), pos.X, pos.Y)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Fatal(err)
	}
}
