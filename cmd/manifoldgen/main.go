// Command manifoldgen generates manifold-valued time-series datasets, saves
// them as CSV and renders figures of the trajectories.
//
// Usage:
//
//	manifoldgen -family lorenz -samples 100 -features 3 -steps 100 -clusters 3 -save -plot
//	manifoldgen -demo -out datasets
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Functional-Data-Clustering/Functional-Data/datasets"
	"github.com/Functional-Data-Clustering/Functional-Data/manifold"
	"github.com/Functional-Data-Clustering/Functional-Data/plotting"
)

// job is one dataset to generate.
type job struct {
	family   manifold.Family
	samples  int
	features int
	steps    int
	clusters int
}

// demoJobs are the shapes used by -demo.
var demoJobs = []job{
	{manifold.Hypersphere, 100, 3, 100, 2},
	{manifold.Hyperbolic, 200, 2, 50, 2},
	{manifold.SwissRoll, 300, 2, 200, 4},
	{manifold.Lorenz, 100, 3, 100, 3},
	{manifold.Pendulum, 200, 2, 100, 4},
}

type settings struct {
	noise      float64
	omegaDelta float64
	seed       int64
	seeded     bool
	outDir     string
	save       bool
	ext        string
	plot       bool
	maxTraj    int
	logger     *slog.Logger
}

func main() {
	familyFlag := flag.String("family", "all", "manifold family to generate (hypersphere, hyperbolic, swiss_roll, lorenz, pendulum) or 'all'")
	samples := flag.Int("samples", 100, "number of trajectories")
	features := flag.Int("features", 3, "feature dimension of each point")
	steps := flag.Int("steps", 100, "number of time steps per trajectory")
	clusters := flag.Int("clusters", 2, "number of clusters")
	noise := flag.Float64("noise", 0, "base noise level (hypersphere)")
	omegaDelta := flag.Float64("omega-delta", 2.0, "angular velocity separation between pendulum clusters")
	seed := flag.Int64("seed", 0, "random seed (ignored unless set explicitly or -demo is used)")
	precision := flag.Int("precision", 32, "floating point precision: 32 or 64")
	outDir := flag.String("out", "datasets", "output directory for CSV files and figures")
	save := flag.Bool("save", false, "write each dataset as CSV")
	ext := flag.String("ext", ".csv", "CSV file extension; .csv.gz, .csv.zst and .csv.lz4 are compressed")
	plotFlag := flag.Bool("plot", false, "render a PNG figure of each dataset")
	maxTraj := flag.Int("max-traj", plotting.DefaultMaxTraj, "maximum trajectories drawn per figure")
	demo := flag.Bool("demo", false, "generate the five demo datasets (noise 0.02, seed 0) and plot them")
	verbose := flag.Bool("v", false, "verbose generator logging")
	flag.Parse()

	seedSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			seedSet = true
		}
	})

	cfg := settings{
		noise:      *noise,
		omegaDelta: *omegaDelta,
		seed:       *seed,
		seeded:     seedSet,
		outDir:     *outDir,
		save:       *save,
		ext:        *ext,
		plot:       *plotFlag,
		maxTraj:    *maxTraj,
		logger:     slog.New(slog.DiscardHandler),
	}
	if *verbose {
		cfg.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	var jobs []job
	if *demo {
		jobs = demoJobs
		cfg.noise = 0.02
		cfg.seed, cfg.seeded = 0, true
		cfg.plot = true
		if *maxTraj == plotting.DefaultMaxTraj {
			cfg.maxTraj = 150
		}
	} else {
		families, err := parseFamilies(*familyFlag)
		if err != nil {
			log.Fatalf("invalid -family: %v", err)
		}
		for _, f := range families {
			jobs = append(jobs, job{f, *samples, *features, *steps, *clusters})
		}
	}

	if !cfg.save && !cfg.plot {
		log.Printf("neither -save nor -plot set; datasets are generated and discarded")
	}

	start := time.Now()
	var err error
	switch *precision {
	case 32:
		err = runAll[float32](context.Background(), jobs, cfg)
	case 64:
		err = runAll[float64](context.Background(), jobs, cfg)
	default:
		log.Fatalf("invalid -precision %d: must be 32 or 64", *precision)
	}
	if err != nil {
		log.Fatalf("generation failed: %v", err)
	}
	log.Printf("generated %d dataset(s) in %s", len(jobs), time.Since(start).Round(time.Millisecond))
}

func parseFamilies(s string) ([]manifold.Family, error) {
	if strings.EqualFold(strings.TrimSpace(s), "all") {
		return manifold.Families(), nil
	}
	var out []manifold.Family
	for _, name := range strings.Split(s, ",") {
		f, err := manifold.ParseFamily(name)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// runAll generates every job concurrently. Each job owns its generator, so
// its output matches a sequential run with the same seed.
func runAll[T manifold.Float](ctx context.Context, jobs []job, cfg settings) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, j := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return run[T](j, cfg)
		})
	}
	return g.Wait()
}

func run[T manifold.Float](j job, cfg settings) error {
	opts := []manifold.Option{
		manifold.WithClusters(j.clusters),
		manifold.WithBaseNoise(cfg.noise),
		manifold.WithOmegaDelta(cfg.omegaDelta),
		manifold.WithLogger(cfg.logger.With("family", j.family.String())),
	}
	if cfg.seeded {
		opts = append(opts, manifold.WithSeed(cfg.seed))
	}
	gen, err := manifold.New[T](j.samples, j.features, j.steps, opts...)
	if err != nil {
		return fmt.Errorf("%s: %w", j.family, err)
	}

	log.Printf("Generating %s: (n=%d, d=%d, T=%d, %d clusters)", j.family, j.samples, j.features, j.steps, j.clusters)
	ds, err := gen.Generate(j.family)
	if err != nil {
		return fmt.Errorf("%s: %w", j.family, err)
	}

	if cfg.save {
		path := filepath.Join(cfg.outDir, j.family.String()+cfg.ext)
		if err := datasets.SaveDataset(ds, path); err != nil {
			return fmt.Errorf("%s: %w", j.family, err)
		}
		log.Printf("%s written to %s", j.family, path)
	}
	if cfg.plot {
		out := filepath.Join(cfg.outDir, j.family.String()+".png")
		req := plotting.Request[T]{Data: ds, Name: j.family.String(), MaxTraj: cfg.maxTraj, Out: out}
		if err := plotting.Plot(gen, req); err != nil {
			return fmt.Errorf("%s: plot: %w", j.family, err)
		}
		log.Printf("%s figure written to %s", j.family, out)
	}
	return nil
}
