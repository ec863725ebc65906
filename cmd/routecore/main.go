// Command routecore is the CLI front door onto the orchestrator: load a
// Configuration, build an engine instance, and run one vertex-oriented
// query, one KSP query, or a batch of queries read from a file (spec
// §4.11, §6). Grounded on theRebelliousNerd-codenerd/cmd/nerd's
// rootCmd/PersistentPreRunE structure: global --config/--verbose flags, a
// zap logger built once in PersistentPreRunE and threaded down via a
// package-level variable, one cobra.Command per subcommand.
package main

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/routecore/routecore/astar"
	"github.com/routecore/routecore/config"
	"github.com/routecore/routecore/network"
	"github.com/routecore/routecore/orchestrator"
)

var (
	configPath string
	verbose    bool

	logger *zap.Logger
	inst   *orchestrator.Instance
)

var rootCmd = &cobra.Command{
	Use:   "routecore",
	Short: "routecore - a constraint-aware shortest/k-shortest path engine",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configPath == "" {
			return fmt.Errorf("routecore: --config is required")
		}
		cfg, err := config.LoadFrom(configPath)
		if err != nil {
			return err
		}
		cfg.Verbose = verbose || cfg.Verbose

		built, err := config.Build(cfg)
		if err != nil {
			return err
		}
		inst = built
		logger = inst.Logger

		return nil
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the routecore configuration YAML file")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug-level structured logging")

	rootCmd.AddCommand(routeCmd, kspCmd, batchCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	routeSrc       int
	routeDst       int
	routeHasDst    bool
	routeAlgorithm string
	routeSOCPct    float64
	routeHasSOC    bool
)

var routeCmd = &cobra.Command{
	Use:   "route",
	Short: "run a single vertex-oriented search and print the result as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		q := orchestrator.Query{Algorithm: routeAlgorithm}
		if routeHasSOC {
			q.StartingSOCPercent = &routeSOCPct
		}

		var dst *network.VertexId
		if routeHasDst {
			v := network.VertexId(routeDst)
			dst = &v
		}

		res := inst.RunVertexOriented(network.VertexId(routeSrc), dst, q, astar.Forward)
		return printResult(res)
	},
}

var (
	kspSrc        int
	kspDst        int
	kspK          int
	kspAlgorithm  string
	kspSimilarity float64
)

var kspCmd = &cobra.Command{
	Use:   "ksp",
	Short: "run a k-shortest-paths query and print the result as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		dst := network.VertexId(kspDst)
		q := orchestrator.Query{Algorithm: kspAlgorithm, K: kspK, Similarity: kspSimilarity}

		res := inst.RunVertexOriented(network.VertexId(kspSrc), &dst, q, astar.Forward)
		return printResult(res)
	},
}

var batchFile string

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "run every query in a JSON array file and print results as a JSON array",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(batchFile)
		if err != nil {
			return fmt.Errorf("routecore: reading batch file: %w", err)
		}

		var requests []batchRequest
		if err := json.Unmarshal(data, &requests); err != nil {
			return fmt.Errorf("routecore: parsing batch file: %w", err)
		}

		items := make([]orchestrator.BatchItem, len(requests))
		for i, req := range requests {
			items[i] = orchestrator.BatchItem{
				Query:     orchestrator.Query{Algorithm: req.Algorithm, K: req.K, Similarity: req.Similarity},
				Source:    network.VertexId(req.Source),
				Direction: astar.Forward,
			}
			if req.Destination != nil {
				d := network.VertexId(*req.Destination)
				items[i].Destination = &d
			}
		}

		logger.Info("running batch", zap.Int("count", len(items)))
		results := inst.RunBatch(items)

		return printResults(results)
	},
}

type batchRequest struct {
	Algorithm   string `json:"algorithm"`
	Source      int    `json:"source"`
	Destination *int   `json:"destination,omitempty"`
	K           int    `json:"k,omitempty"`
	Similarity  float64 `json:"similarity,omitempty"`
}

func printResult(res *orchestrator.Result) error {
	data, err := orchestrator.MarshalResult(res)
	if err != nil {
		return err
	}
	fmt.Println(string(data))

	return nil
}

func printResults(results []*orchestrator.Result) error {
	data, err := json.Marshal(results)
	if err != nil {
		return err
	}
	fmt.Println(string(data))

	return nil
}

func init() {
	routeCmd.Flags().IntVar(&routeSrc, "src", 0, "source vertex id")
	routeCmd.Flags().IntVar(&routeDst, "dst", 0, "destination vertex id")
	routeCmd.Flags().BoolVar(&routeHasDst, "has-dst", false, "set if --dst should bound the search")
	routeCmd.Flags().StringVar(&routeAlgorithm, "algorithm", "dijkstra", "a_star | dijkstra")
	routeCmd.Flags().Float64Var(&routeSOCPct, "starting-soc-percent", 100, "starting battery state of charge, percent")
	routeCmd.Flags().BoolVar(&routeHasSOC, "has-soc", false, "set if --starting-soc-percent should override the default")

	kspCmd.Flags().IntVar(&kspSrc, "src", 0, "source vertex id")
	kspCmd.Flags().IntVar(&kspDst, "dst", 0, "destination vertex id")
	kspCmd.Flags().IntVar(&kspK, "k", 3, "number of paths to return")
	kspCmd.Flags().StringVar(&kspAlgorithm, "algorithm", "yens", "yens | ksp_single_via")
	kspCmd.Flags().Float64Var(&kspSimilarity, "similarity", 0.8, "maximum edge-set Jaccard similarity between accepted paths")

	batchCmd.Flags().StringVar(&batchFile, "file", "", "path to a JSON array of query requests")
	batchCmd.MarkFlagRequired("file")
}
