package compiler

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/zurustar/evscript/pkg/fileutil"
	"github.com/zurustar/evscript/pkg/source"
)

// CompileSources compiles each source independently and returns one result
// per source, index-aligned with sources. At most opts.Jobs sources are
// compiled at once.
//
// A failed source does not stop the others. Once ctx is done no further
// sources are scheduled; their results carry ctx.Err().
//
// Parameters:
//   - ctx: Cancels scheduling of the remaining sources
//   - sources: Sources loaded by source.Loader (already UTF-8 converted)
//   - opts: Compilation options
//
// Returns:
//   - []CompileResult: Compilation results for each source
func CompileSources(ctx context.Context, sources []source.Source, opts CompileOptions) []CompileResult {
	results := make([]CompileResult, len(sources))
	for i, src := range sources {
		results[i] = CompileResult{FileName: src.FileName, Path: src.Path}
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	var g errgroup.Group
	g.SetLimit(jobs)

	for i := range sources {
		if err := ctx.Err(); err != nil {
			for j := i; j < len(sources); j++ {
				results[j].Err = err
			}
			break
		}
		g.Go(func() error {
			// Each goroutine writes only its own slot.
			results[i].Script, results[i].Err = CompileWithOptions(sources[i].Content, opts)
			return nil
		})
	}

	// Compile failures are reported per result, never through the group.
	_ = g.Wait()
	return results
}

// CompileDirectory loads all script files under dirPath and compiles them.
// This is a convenience function that combines source.Loader with
// CompileSources.
//
// Parameters:
//   - ctx: Cancels scheduling of the remaining files
//   - dirPath: Path to the directory containing script files
//   - opts: Compilation options; opts.Extensions selects the files
//
// Returns:
//   - []CompileResult: Compilation results for each file, sorted by path
//   - error: Error if loading scripts failed (nil if loading succeeded)
func CompileDirectory(ctx context.Context, dirPath string, opts CompileOptions) ([]CompileResult, error) {
	results, err := CompileFS(ctx, os.DirFS(dirPath), ".", opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load scripts from %s: %w", dirPath, err)
	}
	return results, nil
}

// CompileFS compiles the script files under root in fsys, for example a
// script set bundled with go:embed. File names are matched
// case-insensitively and result paths are relative to root.
func CompileFS(ctx context.Context, fsys fs.FS, root string, opts CompileOptions) ([]CompileResult, error) {
	loader := source.NewLoader(fileutil.NewEmbedFS(fsys, root), opts.Extensions...)
	sources, err := loader.LoadAll()
	if err != nil {
		return nil, err
	}

	return CompileSources(ctx, sources, opts), nil
}
