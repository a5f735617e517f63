// Command femsim repairs polygon soups into closed, outward oriented
// triangle meshes ready for tetrahedral meshing.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/birukm3/femSIM/pkg/diagnose"
	"github.com/spf13/cobra"
)

// DefaultOutput is written when repair gets no output path.
const DefaultOutput = "cleaned.STL"

func main() {
	cmd := newRootCmd(NewApp())
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "femsim:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps a failure to the process exit status: 2 for unreadable
// input, 3 for unwritable output and 1 for everything else.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrRead):
		return 2
	case errors.Is(err, ErrWrite):
		return 3
	}
	return 1
}

func newRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "femsim",
		Short:         "Repair surface meshes for finite element meshing",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRepairCmd(app), newInspectCmd(app), newSampleCmd(app))
	return root
}

func newRepairCmd(app *App) *cobra.Command {
	var (
		opts     RepairOptions
		planPath string
		epsilon  float64
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "repair <input> [output]",
		Short: "Triangulate, stitch and orient a mesh",
		Long: `Reads an STL, OBJ or OFF polygon soup, triangulates it, stitches
coincident borders and orients every closed component outward. The output
format follows the output extension (default ` + DefaultOutput + `).`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := DefaultOutput
			if len(args) == 2 {
				out = args[1]
			}
			if planPath != "" {
				src, err := os.ReadFile(planPath)
				if err != nil {
					return fmt.Errorf("%w: %v", ErrUsage, err)
				}
				opts.Plan = string(src)
			}
			if cmd.Flags().Changed("epsilon") {
				opts.Epsilon = &epsilon
			}

			result, err := app.Repair(args[0], out, opts)
			if asJSON {
				if jerr := writeJSON(cmd.OutOrStdout(), result); jerr != nil {
					return jerr
				}
			} else {
				printRepair(cmd.OutOrStdout(), result)
			}
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&planPath, "plan", "", "repair plan file")
	f.Float64Var(&epsilon, "epsilon", 0, "stitch tolerance for coincident vertices")
	f.StringVar(&opts.Policy, "triangulate", "", "triangulation policy (ear-clip or fan)")
	f.BoolVar(&opts.NoTriangulate, "no-triangulate", false, "keep polygon faces")
	f.BoolVar(&opts.NoStitch, "no-stitch", false, "skip border stitching")
	f.BoolVar(&opts.NoOrient, "no-orient", false, "skip orientation")
	f.BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func newInspectCmd(app *App) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "inspect <input>",
		Short: "Print mesh diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := app.Inspect(args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), snap)
			}
			printSnapshot(cmd.OutOrStdout(), snap)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the snapshot as JSON")
	return cmd
}

func newSampleCmd(app *App) *cobra.Command {
	var opts SampleOptions
	cmd := &cobra.Command{
		Use:       "sample <name>",
		Short:     "Write a tessellated demo solid",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"box", "bracket", "cylinder", "drilled"},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Name = args[0]
			snap, err := app.Sample(opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", opts.Output)
			printSnapshot(cmd.OutOrStdout(), snap)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.Output, "output", "o", "sample.stl", "output file")
	f.Float64Var(&opts.Size, "size", 40, "overall size of the solid")
	f.StringVar(&opts.Kernel, "kernel", "sdfx", "geometry kernel (sdfx or manifold)")
	f.IntVar(&opts.Cells, "cells", 0, "sdfx marching cubes resolution (0 for the kernel default)")
	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printSnapshot(w io.Writer, s diagnose.Snapshot) {
	fmt.Fprintf(w, "number of vertices: %d\n", s.VertexCount)
	fmt.Fprintf(w, "number of edges: %d\n", s.EdgeCount)
	fmt.Fprintf(w, "number of faces: %d\n", s.FaceCount)
	fmt.Fprintf(w, "triangle mesh: %t\n", s.IsTriangleMesh)
	fmt.Fprintf(w, "closed: %t (%d boundary edges, %d non-manifold edges)\n",
		s.IsClosed, s.BoundaryEdges, s.NonManifoldEdges)
	fmt.Fprintf(w, "outward oriented: %t (signed volume %g)\n", s.IsOutwardOriented, s.SignedVolume)
}

func printRepair(w io.Writer, r RepairResult) {
	for _, e := range r.Errors {
		fmt.Fprintf(w, "plan error (line %d): %s\n", e.Line, e.Message)
	}
	if r.Report == nil {
		return
	}
	snaps := r.Report.Snapshots
	if len(snaps) > 0 {
		printSnapshot(w, snaps[0])
	}
	for i := 1; i < len(snaps); i++ {
		fmt.Fprintf(w, "%s: %s\n", snaps[i].Phase, diagnose.Diff(snaps[i-1], snaps[i]))
	}
	for _, warn := range r.Report.Warnings {
		fmt.Fprintf(w, "warning: %v\n", warn)
	}
	if r.Report.OrientError != "" {
		fmt.Fprintf(w, "orientation skipped: %s\n", r.Report.OrientError)
	}
	fmt.Fprintf(w, "closed: %t\n", r.Closed)
	fmt.Fprintf(w, "outward oriented: %t\n", r.OutwardOriented)
}
