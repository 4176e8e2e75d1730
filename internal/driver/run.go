package driver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"regionck/internal/diag"
	"regionck/internal/fixture"
	"regionck/internal/observ"
	"regionck/internal/project"
	"regionck/internal/regions"
	"regionck/internal/source"
	"regionck/internal/trace"
)

// Options configure a run.
type Options struct {
	Jobs           int // <= 0 means GOMAXPROCS
	MaxDiagnostics int
	Regions        regions.Options
	Cache          *Cache // nil disables caching
	Progress       ProgressSink
	Timings        bool
}

// FileResult holds everything produced for one scenario file.
type FileResult struct {
	Path     string
	FileID   source.FileID
	Outcomes []Outcome
	Bag      *diag.Bag
	Cached   bool
	Timings  observ.Report
}

// Failed reports whether a case failed or an error was diagnosed.
func (r *FileResult) Failed() bool {
	if r.Bag != nil && r.Bag.HasErrors() {
		return true
	}
	for _, o := range r.Outcomes {
		if !o.Pass {
			return true
		}
	}
	return false
}

// Result is the outcome of a whole run.
type Result struct {
	FileSet *source.FileSet
	Files   []FileResult
	// Vars is the number of region variables allocated by this run.
	Vars uint64
}

// Summary counts cases across files.
type Summary struct {
	Files          int `json:"files"`
	Cached         int `json:"cached"`
	Cases          int `json:"cases"`
	Passed         int `json:"passed"`
	Failed         int `json:"failed"`
	ExpectedAborts int `json:"expected_aborts"`
}

// Summary tallies the run.
func (r *Result) Summary() Summary {
	var s Summary
	for i := range r.Files {
		f := &r.Files[i]
		s.Files++
		if f.Cached {
			s.Cached++
		}
		for _, o := range f.Outcomes {
			s.Cases++
			switch {
			case !o.Pass:
				s.Failed++
			case o.Aborted:
				s.Passed++
				s.ExpectedAborts++
			default:
				s.Passed++
			}
		}
	}
	return s
}

// Failed reports whether any file failed.
func (r *Result) Failed() bool {
	for i := range r.Files {
		if r.Files[i].Failed() {
			return true
		}
	}
	return false
}

// HasFatal reports whether an internal invariant violation was diagnosed.
func (r *Result) HasFatal() bool {
	for i := range r.Files {
		if r.Files[i].Bag.HasFatal() {
			return true
		}
	}
	return false
}

// ListScenarios expands paths into a sorted list of scenario files.
// Directories are walked for *.toml files; the project configuration
// file is skipped.
func ListScenarios(paths []string) ([]string, error) {
	var files []string
	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, root)
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.HasSuffix(path, ".toml") && d.Name() != project.ConfigFileName {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	// Сортируем для детерминированного порядка
	slices.Sort(files)
	return slices.Compact(files), nil
}

// Run checks every scenario under paths in parallel. Files are
// independent except for the region variable allocator, which is shared
// so that no two functions of a run ever see the same variable.
func Run(ctx context.Context, paths []string, opts Options) (*Result, error) {
	files, err := ListScenarios(paths)
	if err != nil {
		return nil, err
	}
	sp, ctx := trace.Start(ctx, trace.ScopeDriver, "run")
	defer sp.End("")
	sp.WithExtra("files", fmt.Sprint(len(files)))

	fileSet := source.NewFileSet()
	res := &Result{FileSet: fileSet}
	if len(files) == 0 {
		return res, nil
	}

	// FileSet is filled before the workers start; they only read it.
	fileIDs := make([]source.FileID, len(files))
	loadErrors := make([]error, len(files))
	for i, path := range files {
		fileIDs[i], loadErrors[i] = fileSet.Load(path)
		emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusQueued})
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	vars := regions.NewVarAllocator()
	res.Files = make([]FileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// индекс i уникален для горутины, мьютекс не нужен
			res.Files[i] = checkFile(gctx, fileSet, fileIDs[i], path, loadErrors[i], vars, &opts)
			return nil
		})
	}
	err = g.Wait()
	res.Vars = vars.Allocated()
	sp.WithExtra("vars", fmt.Sprint(res.Vars))
	return res, err
}

func checkFile(ctx context.Context, fileSet *source.FileSet, id source.FileID, path string, loadErr error, vars *regions.VarAllocator, opts *Options) FileResult {
	started := time.Now()
	res := FileResult{Path: path, FileID: id, Bag: diag.NewBag(diagnosticLimit(opts.MaxDiagnostics))}
	fail := func(stage Stage, err error) FileResult {
		emit(opts.Progress, Event{File: path, Stage: stage, Status: StatusError, Err: err, Elapsed: time.Since(started)})
		return res
	}

	sp, ctx := trace.Start(ctx, trace.ScopeFile, path)
	if loadErr != nil {
		sp.End("load failed")
		diag.ReportError(diag.BagReporter{Bag: res.Bag}, diag.IOLoadFileError, source.Span{}, "failed to load file: "+loadErr.Error()).Emit()
		return fail(StageLoad, loadErr)
	}
	emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusWorking})

	file := fileSet.Get(id)
	key := CacheKey(file.Hash, opts.Regions)
	var cached CachePayload
	hit, cacheErr := opts.Cache.Get(key, id, &cached)
	switch {
	case cacheErr != nil:
		res.Bag.Add(diag.New(diag.SevWarning, diag.IOCacheError, source.Span{}, "result cache: "+cacheErr.Error()))
	case hit:
		res.Outcomes = cached.Outcomes
		for _, d := range cached.Diagnostics {
			res.Bag.Add(d)
		}
		res.Cached = true
		sp.End("cached")
		emit(opts.Progress, Event{File: path, Stage: StageCheck, Status: doneStatus(&res), Elapsed: time.Since(started), Cached: true})
		return res
	}

	var timer *observ.Timer
	if opts.Timings {
		timer = observ.NewTimer()
	}
	reporter := diag.NewDedupReporter(diag.BagReporter{Bag: res.Bag})

	endLoad := timer.Begin("load")
	sc, _ := fixture.Load(fileSet, id, reporter)
	if sc == nil {
		endLoad("failed")
		sp.End("load failed")
		return fail(StageLoad, errors.New("malformed scenario file"))
	}
	endLoad(fmt.Sprintf("%d functions", len(sc.Functions)))

	emit(opts.Progress, Event{File: path, Stage: StageCheck, Status: StatusWorking})
	endCheck := timer.Begin("check")
	res.Outcomes = checkScenario(ctx, sc, vars, opts.Regions, reporter)
	endCheck(fmt.Sprintf("%d cases", len(res.Outcomes)))

	res.Bag.Sort()
	if err := opts.Cache.Put(key, &CachePayload{Path: path, Outcomes: res.Outcomes, Diagnostics: res.Bag.Items()}); err != nil {
		res.Bag.Add(diag.New(diag.SevWarning, diag.IOCacheError, source.Span{}, "result cache: "+err.Error()))
	}
	if opts.Timings {
		res.Timings = timer.Report()
		appendTimingDiagnostic(res.Bag, path, res.Timings)
	}

	sp.WithExtra("cases", fmt.Sprint(len(res.Outcomes)))
	sp.End("")
	emit(opts.Progress, Event{File: path, Stage: StageCheck, Status: doneStatus(&res), Elapsed: time.Since(started)})
	return res
}

// DefaultMaxDiagnostics caps a file's diagnostics when Options leave it unset.
const DefaultMaxDiagnostics = 100

func diagnosticLimit(n int) int {
	if n <= 0 {
		return DefaultMaxDiagnostics
	}
	return n
}

func doneStatus(res *FileResult) Status {
	if res.Failed() {
		return StatusError
	}
	return StatusDone
}
