package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ironsheep/image-partition-mcp/internal/config"
	"github.com/ironsheep/image-partition-mcp/internal/hsla"
	"github.com/ironsheep/image-partition-mcp/internal/imaging"
	"github.com/ironsheep/image-partition-mcp/internal/partition"
)

// runRender builds the partition of one image and writes the unpruned render
// as <base>-out.<format> plus one <base>-out.<tolerance>.<format> per tolerance.
// Flags override the values from -config.
func runRender(args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	in := fs.String("in", "", "input image (required)")
	outDir := fs.String("out-dir", "", "output directory (default: next to the input)")
	tolerances := fs.String("tolerances", "", "comma separated pruning tolerances, e.g. 0.2,0.1")
	metric := fs.String("metric", "", "color distance: hsl or ciede2000")
	blur := fs.Float64("blur", 0, "Gaussian pre-smoothing radius")
	format := fs.String("format", "", "output format: png, jpg, gif or qoi")
	workers := fs.Int("workers", 0, "goroutines used to build the tree")
	archive := fs.Bool("archive", false, "also write the full tree to <base>.2dtr")
	configPath := fs.String("config", "", "YAML config file")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if *in == "" {
		return errors.New("-in is required")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	var flagErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "out-dir":
			cfg.Output.Dir = *outDir
		case "tolerances":
			tols, err := parseTolerances(*tolerances)
			if err != nil {
				flagErr = err
			}
			cfg.Partition.Tolerances = tols
		case "metric":
			cfg.Partition.Metric = *metric
		case "blur":
			cfg.Preprocess.BlurRadius = *blur
		case "format":
			cfg.Output.Format = *format
		case "workers":
			cfg.Partition.Workers = *workers
		}
	})
	if flagErr != nil {
		return flagErr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	distance, err := hsla.MetricByName(cfg.Partition.Metric)
	if err != nil {
		return err
	}

	src, err := imaging.NewImageCache().Load(*in)
	if err != nil {
		return err
	}
	img, err := hsla.FromImage(imaging.Smooth(src, cfg.Preprocess.BlurRadius))
	if err != nil {
		return fmt.Errorf("failed to convert %s: %w", *in, err)
	}

	start := time.Now()
	tree, err := partition.Build(img, partition.Options{
		Workers:         cfg.Partition.Workers,
		MinParallelArea: cfg.Partition.MinParallelArea,
	})
	if err != nil {
		return err
	}
	log.Printf("built %dx%d tree: %d leaves, depth %d in %v",
		tree.Width(), tree.Height(), tree.Leaves(), tree.Depth(), time.Since(start))

	dir := cfg.Output.Dir
	if dir == "" {
		dir = filepath.Dir(*in)
	}
	base := strings.TrimSuffix(filepath.Base(*in), filepath.Ext(*in))
	ext := strings.ToLower(cfg.Output.Format)

	if err := renderTo(tree, filepath.Join(dir, base+"-out."+ext)); err != nil {
		return err
	}
	for _, tol := range cfg.Partition.Tolerances {
		pruned := tree.Clone()
		if err := pruned.PruneWith(tol, distance); err != nil {
			return err
		}
		name := fmt.Sprintf("%s-out.%s.%s", base, formatTolerance(tol), ext)
		if err := renderTo(pruned, filepath.Join(dir, name)); err != nil {
			return err
		}
		if cfg.Debug() {
			log.Printf("tolerance %g: %d leaves", tol, pruned.Leaves())
		}
	}

	if *archive {
		path := filepath.Join(dir, base+".2dtr")
		if err := writeArchive(tree, path); err != nil {
			return err
		}
		log.Printf("wrote %s", path)
	}
	return nil
}

func renderTo(tree *partition.Tree, path string) error {
	img, err := tree.Render()
	if err != nil {
		return err
	}
	if err := imaging.Save(img, path); err != nil {
		return err
	}
	log.Printf("wrote %s (%d rectangles)", path, tree.Leaves())
	return nil
}

func writeArchive(tree *partition.Tree, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	if _, err := tree.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write archive %s: %w", path, err)
	}
	return f.Close()
}

// parseTolerances parses a comma separated list such as "0.2,0.1,0.05".
func parseTolerances(s string) ([]float64, error) {
	var tols []float64
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		tol, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid tolerance %q: %w", field, err)
		}
		tols = append(tols, tol)
	}
	return tols, nil
}

// formatTolerance renders 0.05 as "0.05" and 1 as "1".
func formatTolerance(tol float64) string {
	return strconv.FormatFloat(tol, 'f', -1, 64)
}
