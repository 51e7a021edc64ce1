package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/iosched-sim/iosched-sim/sim"
	"github.com/iosched-sim/iosched-sim/sim/trace"
	"github.com/iosched-sim/iosched-sim/sim/workload"
)

var (
	// CLI flags shared by every subcommand
	seed              int64         // Seed for workload generation and fault injection
	simulationHorizon int64         // Total simulation time (in ticks)
	logLevel          string        // Log verbosity level
	defaultsFilePath  string        // Path to the device presets file
	deviceName        string        // Device preset from defaults.yaml
	policyName        string        // Insertion policy
	errorRate         float64       // Probability of a transient EIO per dispatch
	maxRetries        int           // Requeues allowed after a transient error
	workloadFilePath  string        // Workload spec YAML; empty = synthesize from flags
	workloadFlags     WorkloadFlags // Single-client workload when no spec file is given

	// run only
	traceLevel  string // Dispatch trace level
	resultsPath string // File to write the JSON metrics to

	// stress only
	producers     int           // Concurrent submitting goroutines
	stressTimeout time.Duration // Wall-clock limit for the stress run
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "iosched-sim",
	Short: "Discrete-event simulator for one-way elevator block I/O scheduling",
}

// setup is the state every subcommand starts from.
type setup struct {
	deviceName string
	preset     DevicePreset
	policy     string
	spec       *workload.WorkloadSpec
	horizon    int64
}

// prepare applies the log level, resolves the device preset and policy,
// and loads the workload. Unrecoverable problems exit via logrus.Fatalf.
func prepare(cmd *cobra.Command) setup {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)

	cfg, err := loadDefaultsConfig(defaultsFilePath)
	if err != nil {
		logrus.Fatalf("%v", err)
	}
	name, preset, err := GetDevicePreset(cfg, deviceName)
	if err != nil {
		logrus.Fatalf("%v", err)
	}
	if cmd.Flags().Changed("error-rate") {
		preset.ErrorRate = errorRate
	}
	if cmd.Flags().Changed("max-retries") {
		preset.MaxRetries = maxRetries
	}

	policy := policyName
	if policy == "" {
		policy = cfg.Defaults.Policy
	}
	if policy == "" {
		policy = "elevator"
	}
	if !sim.IsValidPolicy(policy) {
		logrus.Fatalf("Unknown policy %q. Valid: %v", policy, sim.PolicyNames())
	}

	spec, err := loadWorkload(workloadFilePath, workloadFlags, seed, cmd.Flags().Changed("seed"), preset.Geometry.Capacity)
	if err != nil {
		logrus.Fatalf("%v", err)
	}
	horizon := simulationHorizon
	if spec.Horizon > 0 && !cmd.Flags().Changed("horizon") {
		horizon = spec.Horizon
	}

	logrus.Infof("Device %s (%s): capacity %s, policy %s, error rate %.4f, retries %d",
		name, preset.Description, humanize.IBytes(uint64(preset.Geometry.Capacity)),
		policy, preset.ErrorRate, preset.MaxRetries)
	return setup{deviceName: name, preset: preset, policy: policy, spec: spec, horizon: horizon}
}

func (s setup) requests() []*sim.Request {
	reqs, err := workload.GenerateRequests(s.spec, s.horizon, s.preset.Geometry.Capacity)
	if err != nil {
		logrus.Fatalf("Failed to generate workload: %v", err)
	}
	logrus.Infof("Generated %d requests", len(reqs))
	return reqs
}

func (s setup) simConfig(policy string) sim.SimConfig {
	return sim.SimConfig{
		Horizon:    s.horizon,
		Seed:       seed,
		DeviceName: s.deviceName,
		Geometry:   s.preset.Geometry,
		Policy:     policy,
		Faults:     sim.FaultConfig{ErrorRate: s.preset.ErrorRate, MaxRetries: s.preset.MaxRetries},
		TraceLevel: traceLevel,
	}
}

// runCmd executes the simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the disk scheduling simulation",
	Run: func(cmd *cobra.Command, args []string) {
		st := prepare(cmd)
		startTime := time.Now()

		s, err := sim.NewSimulator(st.simConfig(st.policy), st.requests())
		if err != nil {
			logrus.Fatalf("Invalid simulation config: %v", err)
		}
		s.Run()
		s.Metrics.Print(st.deviceName, st.policy)

		if s.Trace != nil {
			summary := trace.Summarize(s.Trace)
			fmt.Println("=== Dispatch Trace ===")
			fmt.Printf("Dispatches: %d, passes: %d, retries: %d\n", summary.TotalDispatches, summary.Passes, summary.Retries)
			fmt.Printf("Seek mean/max: %s / %s, max queue depth: %d\n",
				humanize.IBytes(uint64(summary.MeanSeek)), humanize.IBytes(uint64(summary.MaxSeek)), summary.MaxQueueDepth)
		}
		if resultsPath != "" {
			if err := s.Metrics.SaveResults(st.deviceName, st.policy, resultsPath); err != nil {
				logrus.Fatalf("Failed to save results: %v", err)
			}
			logrus.Infof("Results written to %s", resultsPath)
		}
		logrus.Infof("Simulation complete in %v.", time.Since(startTime))
	},
}

// stressCmd drives a live device with concurrent producers
var stressCmd = &cobra.Command{
	Use:   "stress",
	Short: "Service the workload on a live device with concurrent producer goroutines",
	Run: func(cmd *cobra.Command, args []string) {
		st := prepare(cmd)
		reqs := st.requests()
		dev := sim.NewDevice(st.deviceName, st.preset.Geometry, sim.NewPolicy(st.policy))

		ctx, cancel := context.WithTimeout(context.Background(), stressTimeout)
		defer cancel()
		startTime := time.Now()
		res, err := sim.RunLive(ctx, dev, reqs, producers)
		if err != nil {
			logrus.Fatalf("Stress run failed: %v", err)
		}
		elapsed := time.Since(startTime)

		res.Metrics.Print(st.deviceName, st.policy)
		fmt.Printf("Wall time            : %v (%d producers, %.0f req/s)\n",
			elapsed, producers, float64(len(res.Order))/elapsed.Seconds())
	},
}

// compareCmd runs one workload under every insertion policy
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Simulate the same workload under each insertion policy",
	Run: func(cmd *cobra.Command, args []string) {
		st := prepare(cmd)

		fmt.Printf("%-10s %10s %8s %14s %12s %12s %12s\n",
			"policy", "completed", "passes", "head travel", "mean ms", "p99 ms", "req/s")
		for _, policy := range sim.PolicyNames() {
			// requests carry per-run state, so each policy gets a fresh copy
			s, err := sim.NewSimulator(st.simConfig(policy), st.requests())
			if err != nil {
				logrus.Fatalf("Invalid simulation config: %v", err)
			}
			s.Run()
			out := s.Metrics.Output(st.deviceName, policy)
			fmt.Printf("%-10s %10d %8d %14s %12.3f %12.3f %12.2f\n",
				policy, out.CompletedRequests, out.Passes, humanize.IBytes(uint64(out.TotalSeekBytes)),
				out.LatencyMeanMs, out.LatencyP99Ms, out.ResponsesPerSec)
		}
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&seed, "seed", 42, "Seed for workload generation and fault injection")
	cmd.Flags().Int64Var(&simulationHorizon, "horizon", 10_000_000, "Total simulation horizon (in ticks)")
	cmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	cmd.Flags().StringVar(&defaultsFilePath, "defaults-filepath", "defaults.yaml", "Path to the device presets file")
	cmd.Flags().StringVar(&deviceName, "device", "", "Device preset from the defaults file (default: the file's default device)")
	cmd.Flags().StringVar(&policyName, "policy", "", "Insertion policy: elevator, fcfs, lifo (default: the file's default policy)")
	cmd.Flags().Float64Var(&errorRate, "error-rate", 0, "Probability that a dispatched request fails with a transient EIO")
	cmd.Flags().IntVar(&maxRetries, "max-retries", 0, "Times a request is retried after a transient error")

	// Workload: either a spec file or a single synthesized client
	cmd.Flags().StringVar(&workloadFilePath, "workload", "", "Workload spec YAML (overrides the single-client flags below)")
	cmd.Flags().Float64Var(&workloadFlags.Rate, "rate", 100, "Requests arrival per second")
	cmd.Flags().Int64Var(&workloadFlags.MaxRequests, "max-requests", 1000, "Maximum number of requests (0 = until the horizon)")
	cmd.Flags().StringVar(&workloadFlags.Pattern, "pattern", "random", "Access pattern: sequential, random, hotspot, strided")
	cmd.Flags().Int64Var(&workloadFlags.Size, "size", 4096, "Request size in bytes")
	cmd.Flags().Int64Var(&workloadFlags.Stride, "stride", 1<<20, "Distance between requests for the strided pattern")
	cmd.Flags().StringToInt64Var(&workloadFlags.Mix, "mix", map[string]int64{"read": 1}, "Command weights, e.g. read=7,write=3")
}

// init sets up CLI flags and subcommands
func init() {
	for _, cmd := range []*cobra.Command{runCmd, stressCmd, compareCmd} {
		addCommonFlags(cmd)
		rootCmd.AddCommand(cmd)
	}
	runCmd.Flags().StringVar(&traceLevel, "trace-level", "none", "Dispatch trace level: none, dispatch")
	runCmd.Flags().StringVar(&resultsPath, "results", "", "Write JSON metrics to this file")

	stressCmd.Flags().IntVar(&producers, "producers", 4, "Number of concurrent producer goroutines")
	stressCmd.Flags().DurationVar(&stressTimeout, "timeout", 30*time.Second, "Wall-clock limit for the stress run")
}
