package main

import (
	"errors"
	"fmt"
	"log"

	"github.com/birukm3/femSIM/pkg/diagnose"
	"github.com/birukm3/femSIM/pkg/engine"
	"github.com/birukm3/femSIM/pkg/kernel"
	"github.com/birukm3/femSIM/pkg/kernel/manifold"
	"github.com/birukm3/femSIM/pkg/kernel/sdfx"
	"github.com/birukm3/femSIM/pkg/meshio"
	"github.com/birukm3/femSIM/pkg/orient"
	"github.com/birukm3/femSIM/pkg/pipeline"
	"github.com/birukm3/femSIM/pkg/triangulate"
)

// Failure classes. The CLI maps them to exit codes.
var (
	ErrUsage = errors.New("usage error")
	ErrRead  = errors.New("read failure")
	ErrWrite = errors.New("write failure")
)

// App ties the repair plan engine, the mesh pipeline and the sample
// kernel together. Both the CLI and the tests drive it.
type App struct {
	engine *engine.Engine
	kernel kernel.Kernel
	logger *log.Logger
}

// NewApp creates a new App with an engine and the sdfx kernel. Stage
// progress goes to the standard logger.
func NewApp() *App {
	return &App{
		engine: engine.NewEngine(),
		kernel: sdfx.New(),
		logger: log.Default(),
	}
}

// RepairOptions carries a repair plan and the command line overrides
// applied on top of it.
type RepairOptions struct {
	// Plan is repair plan source. Empty means the default configuration.
	Plan string

	Policy        string   // triangulation policy, empty keeps the plan's
	Epsilon       *float64 // stitch tolerance, nil keeps the plan's
	NoTriangulate bool
	NoStitch      bool
	NoOrient      bool
}

// RepairResult is the JSON-serializable outcome of a repair.
type RepairResult struct {
	Input           string             `json:"input"`
	Output          string             `json:"output"`
	Config          pipeline.Config    `json:"config"`
	Report          *pipeline.Report   `json:"report,omitempty"`
	Closed          bool               `json:"closed"`
	OutwardOriented bool               `json:"outwardOriented"`
	Errors          []engine.EvalError `json:"errors"`
}

// Config evaluates the plan and applies the overrides. Plan errors are
// returned both as eval errors and as an error wrapping ErrUsage.
func (a *App) Config(opts RepairOptions) (pipeline.Config, []engine.EvalError, error) {
	cfg, evalErrs, err := a.engine.Evaluate(opts.Plan)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		a.logger.Printf("Evaluate fatal error: %v", err)
		return pipeline.Config{}, nil, fmt.Errorf("%w: plan: %v", ErrUsage, err)
	}
	if len(evalErrs) > 0 {
		return pipeline.Config{}, evalErrs, fmt.Errorf("%w: plan: %v", ErrUsage, evalErrs[0])
	}

	if opts.Policy != "" {
		p, err := triangulate.ParsePolicy(opts.Policy)
		if err != nil {
			return pipeline.Config{}, nil, fmt.Errorf("%w: %v", ErrUsage, err)
		}
		cfg.Triangulate = true
		cfg.Policy = p
	}
	if opts.Epsilon != nil {
		if *opts.Epsilon < 0 {
			return pipeline.Config{}, nil, fmt.Errorf("%w: epsilon must not be negative, got %g", ErrUsage, *opts.Epsilon)
		}
		cfg.Epsilon = *opts.Epsilon
	}
	if opts.NoTriangulate {
		cfg.Triangulate = false
	}
	if opts.NoStitch {
		cfg.Stitch = false
	}
	if opts.NoOrient {
		cfg.Orient = false
	}
	cfg.Logger = a.logger
	return *cfg, nil, nil
}

// Repair reads in, runs the pipeline and writes the result to out. The
// returned error wraps ErrUsage, ErrRead or ErrWrite; the result is filled
// in as far as the run got.
func (a *App) Repair(in, out string, opts RepairOptions) (RepairResult, error) {
	result := RepairResult{
		Input:  in,
		Output: out,
		Errors: []engine.EvalError{},
	}

	// Step 1: Build the stage configuration.
	cfg, evalErrs, err := a.Config(opts)
	if err != nil {
		result.Errors = append(result.Errors, evalErrs...)
		return result, err
	}
	result.Config = cfg

	// Step 2: Read the input polygon soup.
	m, err := meshio.Read(in)
	if err != nil {
		a.logger.Printf("Read error: %v", err)
		return result, fmt.Errorf("%w: %w", ErrRead, err)
	}

	// Step 3: Triangulate, stitch and orient.
	m, report, err := pipeline.Run(m, cfg)
	result.Report = report
	if err != nil {
		a.logger.Printf("Repair error: %v", err)
		return result, fmt.Errorf("%w: %w", ErrRead, err)
	}
	result.Closed = m.IsClosed()
	result.OutwardOriented = orient.IsOutwardOriented(m)

	// Step 4: Write the repaired mesh.
	if err := meshio.Write(out, m); err != nil {
		a.logger.Printf("Write error: %v", err)
		return result, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return result, nil
}

// Inspect reads a mesh and reports its diagnostics without changing it.
func (a *App) Inspect(path string) (diagnose.Snapshot, error) {
	m, err := meshio.Read(path)
	if err != nil {
		return diagnose.Snapshot{}, fmt.Errorf("%w: %w", ErrRead, err)
	}
	return diagnose.Take(diagnose.BeforeTriangulation, m), nil
}

// SampleOptions selects a demo solid and the kernel that tessellates it.
type SampleOptions struct {
	Name   string
	Size   float64
	Kernel string // "sdfx" (default) or "manifold"
	Cells  int    // sdfx resolution, 0 for the kernel default
	Output string
}

// kernelFor returns the kernel named in opts.
func (a *App) kernelFor(opts SampleOptions) (kernel.Kernel, error) {
	switch opts.Kernel {
	case "", "sdfx":
		if opts.Cells > 0 {
			return sdfx.New(sdfx.WithCells(opts.Cells)), nil
		}
		return a.kernel, nil
	case "manifold":
		return manifold.New()
	}
	return nil, fmt.Errorf("unknown kernel %q, expected sdfx or manifold", opts.Kernel)
}

// Sample tessellates a named demo solid and writes the mesh to
// opts.Output. The sdfx kernel writes a raw triangle soup.
func (a *App) Sample(opts SampleOptions) (diagnose.Snapshot, error) {
	k, err := a.kernelFor(opts)
	if err != nil {
		return diagnose.Snapshot{}, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	s, err := kernel.Sample(k, opts.Name, opts.Size)
	if err != nil {
		return diagnose.Snapshot{}, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	m, err := k.ToMesh(s)
	if err != nil {
		a.logger.Printf("Tessellate error: %v", err)
		return diagnose.Snapshot{}, fmt.Errorf("sample %s: %w", opts.Name, err)
	}
	if err := meshio.Write(opts.Output, m); err != nil {
		return diagnose.Snapshot{}, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return diagnose.Take(diagnose.BeforeTriangulation, m), nil
}
