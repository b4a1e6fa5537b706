package generate

import (
	"context"
	"io"
	"sort"
	"sync/atomic"

	"github.com/fine-structures/zeosite/libzeo/mutate"
	"github.com/fine-structures/zeosite/libzeo/shells"
	"github.com/fine-structures/zeosite/zeo"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
	"golang.org/x/sync/errgroup"
)

// Opts specifies a site generation run.
type Opts struct {
	Seed     zeo.Seed
	Degrees  zeo.Degrees
	Workers  int       // concurrent site mutations; <= 1 is sequential
	FailFast bool      // stop scheduling sites after the first failure
	Progress io.Writer // if set, receives one CSV line per site
}

// SiteFailure records a site that could not be generated or stored.
type SiteFailure struct {
	Key zeo.SiteKey
	Err error
}

// Report summarizes a run.
type Report struct {
	Shells           zeo.Shells
	Levels           int
	DegreeMismatches []int
	Scheduled        int // (center, bridging) pairs handed to workers
	Generated        int // pairs materialized
	Failures         []SiteFailure
}

// Generator classifies a framework and materializes one substituted + terminated snapshot per site.
type Generator struct {
	Finder  zeo.NeighborFinder
	Mutator *mutate.Mutator
	Target  zeo.SiteMaterializer
}

// NewGenerator returns a Generator using the given finder for both classification and mutation.
func NewGenerator(finder zeo.NeighborFinder, target zeo.SiteMaterializer) *Generator {
	return &Generator{
		Finder:  finder,
		Mutator: mutate.NewMutator(finder),
		Target:  target,
	}
}

// Run classifies fw from the seed and generates every site.
//
// A per-site failure is logged, recorded in the report, and does not stop the run unless FailFast is set.
// A classification failure returns no report.
func (gen *Generator) Run(ctx context.Context, fw *zeo.Framework, opts Opts) (*Report, error) {
	cls, err := shells.Classify(fw, gen.Finder, shells.ClassifyOpts{
		Seed:    opts.Seed,
		Degrees: opts.Degrees,
	})
	if err != nil {
		return nil, err
	}

	sites, err := shells.Sites(fw, gen.Finder, cls.Shells, opts.Degrees)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Shells:           cls.Shells,
		Levels:           cls.Levels,
		DegreeMismatches: cls.DegreeMismatches,
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	var scheduled atomic.Int64
	stream := zeo.NewSiteStream(workers)

	go func() {
		g, gctx := errgroup.WithContext(runCtx)
		g.SetLimit(workers)

	scheduling:
		for _, site := range sites {
			for _, bridging := range site.Bridging {
				if gctx.Err() != nil {
					break scheduling
				}
				key := zeo.SiteKey{
					Shell:    site.Shell,
					Center:   site.Center,
					Bridging: bridging,
				}
				scheduled.Add(1)
				g.Go(func() error {
					res := &zeo.SiteResult{
						Key: key,
					}
					res.Substituted, res.Terminated, res.Err = gen.Mutator.MutateSite(fw, key.Center, key.Bridging)
					stream.PushResult(res)
					return nil
				})
			}
		}
		g.Wait()
		stream.Close()
	}()

	out := stream
	if opts.Progress != nil {
		out = out.Print(opts.Progress, "")
	}
	out = out.MaterializeTo(gen.Target)

	for res := range out.Outlet {
		if res.Err != nil {
			klog.Errorf("site %d/%d/%d: %v", res.Key.Shell, res.Key.Center, res.Key.Bridging, res.Err)
			report.Failures = append(report.Failures, SiteFailure{
				Key: res.Key,
				Err: res.Err,
			})
			if opts.FailFast {
				cancel()
			}
		} else {
			report.Generated++
		}
	}
	report.Scheduled = int(scheduled.Load())

	sort.Slice(report.Failures, func(i, j int) bool {
		A, B := report.Failures[i].Key, report.Failures[j].Key
		if A.Shell != B.Shell {
			return A.Shell < B.Shell
		}
		if A.Center != B.Center {
			return A.Center < B.Center
		}
		return A.Bridging < B.Bridging
	})

	klog.V(2).Infof("generated %d of %d sites across %d shells", report.Generated, report.Scheduled, len(report.Shells))

	if err = ctx.Err(); err != nil {
		return report, err
	}
	if opts.FailFast && len(report.Failures) > 0 {
		first := report.Failures[0]
		return report, errors.Wrapf(first.Err, "site %d/%d/%d", first.Key.Shell, first.Key.Center, first.Key.Bridging)
	}
	return report, nil
}

// NumSites returns the number of (center, bridging) pairs a set of sites expands to.
func NumSites(sites []zeo.Site) int {
	count := 0
	for _, site := range sites {
		count += len(site.Bridging)
	}
	return count
}
