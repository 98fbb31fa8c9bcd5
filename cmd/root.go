package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/scalesim/scalesim/sim"
)

var (
	// CLI flags mirroring the simulation config
	seed           int64
	logLevel       string
	arrivalRate    float64
	serviceTimeMin float64
	serviceTimeMax float64
	netDelayMin    float64
	netDelayMax    float64
	maxInFlight    int
	queueCapacity  int
	maxWaitTime    float64
	initialNodes   int
	minNodes       int
	maxNodes       int
	nodeCapacity   int
	autoscale      bool
	lowThreshold   float64
	highThreshold  float64
	controlInt     float64
	scaleCooldown  float64
	duration       float64
	slaThreshold   float64
	workers        int
	balancer       string

	scenarioFile string
	scenarioName string
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "scalesim",
	Short: "Discrete-event simulator for autoscaling request-serving clusters",
}

// runCmd executes one simulation using parameters from CLI flags or a
// named scenario preset.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the cluster simulation",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg := configFromFlags(cmd)
		if scenarioName != "" {
			scenario, err := LookupScenario(scenarioFile, scenarioName)
			if err != nil {
				logrus.Fatalf("unable to load scenario: %v", err)
			}
			logrus.Infof("Using scenario %q: %s", scenario.Name, scenario.Description)
			cfg = scenario.Config
			cfg.Seed = seed
		}

		logrus.Infof("Starting simulation: lambda=%.2f, nodes=%d, duration=%.1f, autoscale=%v",
			cfg.ArrivalRate, cfg.InitialNodes, cfg.Duration, cfg.Autoscale)

		s, err := sim.NewSimulation(cfg)
		if err != nil {
			logrus.Fatalf("invalid configuration: %v", err)
		}
		metrics := s.Run()
		metrics.Print()

		logrus.Info("Simulation complete.")
	},
}

// scenariosCmd lists the bundled scenario presets.
var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List available scenario presets",
	Run: func(cmd *cobra.Command, args []string) {
		PrintScenarios(os.Stdout)
	},
}

// configFromFlags assembles a Config from the CLI flags, starting from the
// defaults so unset flags keep their stock values.
func configFromFlags(cmd *cobra.Command) sim.Config {
	cfg := sim.DefaultConfig()
	cfg.Seed = seed
	cfg.ArrivalRate = arrivalRate
	cfg.ServiceTimeMin = serviceTimeMin
	cfg.ServiceTimeMax = serviceTimeMax
	cfg.NetDelayMin = netDelayMin
	cfg.NetDelayMax = netDelayMax
	cfg.MaxInFlight = maxInFlight
	cfg.QueueCapacity = queueCapacity
	cfg.MaxWaitTime = maxWaitTime
	cfg.InitialNodes = initialNodes
	cfg.MinNodes = minNodes
	cfg.MaxNodes = maxNodes
	cfg.NodeCapacity = nodeCapacity
	cfg.Autoscale = autoscale
	cfg.LowThreshold = lowThreshold
	cfg.HighThreshold = highThreshold
	cfg.ControlInterval = controlInt
	cfg.ScaleCooldown = scaleCooldown
	cfg.Duration = duration
	cfg.SLAThreshold = slaThreshold
	cfg.Workers = workers
	cfg.Balancer = balancer
	return cfg
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	defaults := sim.DefaultConfig()

	runCmd.Flags().Int64Var(&seed, "seed", defaults.Seed, "Seed for deterministic random draws")
	runCmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")

	// Workload
	runCmd.Flags().Float64Var(&arrivalRate, "rate", defaults.ArrivalRate, "Request arrival rate (lambda, requests per second)")
	runCmd.Flags().Float64Var(&serviceTimeMin, "service-min", defaults.ServiceTimeMin, "Minimum service time")
	runCmd.Flags().Float64Var(&serviceTimeMax, "service-max", defaults.ServiceTimeMax, "Maximum service time")
	runCmd.Flags().Float64Var(&netDelayMin, "net-delay-min", defaults.NetDelayMin, "Minimum network delay")
	runCmd.Flags().Float64Var(&netDelayMax, "net-delay-max", defaults.NetDelayMax, "Maximum network delay")

	// Admission control
	runCmd.Flags().IntVar(&maxInFlight, "max-in-flight", 0, "Global in-flight request cap (0 = uncapped)")
	runCmd.Flags().IntVar(&queueCapacity, "queue-capacity", 0, "Queue capacity override (0 = derived)")
	runCmd.Flags().Float64Var(&maxWaitTime, "max-wait-time", 0, "Max queue wait before rejection (0 = unset)")

	// Node pool
	runCmd.Flags().IntVar(&initialNodes, "initial-nodes", defaults.InitialNodes, "Initial node count")
	runCmd.Flags().IntVar(&minNodes, "min-nodes", defaults.MinNodes, "Minimum node count")
	runCmd.Flags().IntVar(&maxNodes, "max-nodes", defaults.MaxNodes, "Maximum node count")
	runCmd.Flags().IntVar(&nodeCapacity, "node-capacity", defaults.NodeCapacity, "Concurrent slots per node")

	// Autoscaler
	runCmd.Flags().BoolVar(&autoscale, "autoscale", false, "Enable the autoscaling controller")
	runCmd.Flags().Float64Var(&lowThreshold, "low-threshold", defaults.LowThreshold, "Scale-down threshold")
	runCmd.Flags().Float64Var(&highThreshold, "high-threshold", defaults.HighThreshold, "Scale-up threshold")
	runCmd.Flags().Float64Var(&controlInt, "control-interval", defaults.ControlInterval, "Controller tick period")
	runCmd.Flags().Float64Var(&scaleCooldown, "scale-cooldown", defaults.ScaleCooldown, "Minimum time between scaling actions")

	// Run
	runCmd.Flags().Float64Var(&duration, "duration", defaults.Duration, "Simulation duration in simulated seconds")
	runCmd.Flags().Float64Var(&slaThreshold, "sla-threshold", 0, "Response-time SLA threshold (0 = unset)")
	runCmd.Flags().IntVar(&workers, "workers", 0, "Dispatcher worker count (0 = derived)")
	runCmd.Flags().StringVar(&balancer, "balancer", defaults.Balancer, "Load balancer type (round-robin, random)")

	// Scenario presets
	runCmd.Flags().StringVar(&scenarioFile, "scenario-file", "", "YAML scenario file (default: built-in presets)")
	runCmd.Flags().StringVar(&scenarioName, "scenario", "", "Named scenario preset to run")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scenariosCmd)
}
