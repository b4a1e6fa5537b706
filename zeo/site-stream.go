package zeo

import (
	"fmt"
	"io"
	"strings"
)

// SiteResult is the outcome of generating one (center, bridging) pair.
// Err is set when the site could not be generated; the snapshots are then nil.
type SiteResult struct {
	Key         SiteKey
	Substituted *Framework
	Terminated  *Framework
	Err         error
}

// SiteStream carries SiteResults from a producer to a consumer.
// Ownership of each SiteResult travels through the channel.
type SiteStream struct {
	Outlet chan *SiteResult
}

func NewSiteStream(bufSz int) *SiteStream {
	stream := &SiteStream{
		Outlet: make(chan *SiteResult, bufSz),
	}
	return stream
}

func (stream *SiteStream) Close() {
	if stream.Outlet != nil {
		close(stream.Outlet)
	}
}

func (stream *SiteStream) PushResult(res *SiteResult) {
	stream.Outlet <- res
}

// PullAll drains the stream, returning the number of generated and failed sites.
func (stream *SiteStream) PullAll() (generated, failed int) {
	for res := range stream.Outlet {
		if res.Err != nil {
			failed++
		} else {
			generated++
		}
	}
	return
}

// Print writes one CSV line per result to out and forwards each result downstream.
func (stream *SiteStream) Print(out io.Writer, label string) *SiteStream {
	next := NewSiteStream(1)

	go func() {
		buf := strings.Builder{}
		buf.Grow(128)

		count := 0
		for res := range stream.Outlet {
			if len(label) > 0 {
				buf.WriteString(label)
				buf.WriteByte(',')
			}
			count++
			fmt.Fprintf(&buf, "%06d,%d,%d,%d,", count, res.Key.Shell, res.Key.Center, res.Key.Bridging)
			if res.Err != nil {
				fmt.Fprintf(&buf, "error,%q", res.Err.Error())
			} else {
				fmt.Fprintf(&buf, "ok,%d", res.Terminated.NumAtoms())
			}
			buf.WriteByte('\n')
			io.WriteString(out, buf.String())
			buf.Reset()
			next.Outlet <- res
		}
		next.Close()
	}()

	return next
}

// MaterializeTo hands each successful result to target and forwards it downstream.
// A materializer failure is recorded in the forwarded result's Err.
func (stream *SiteStream) MaterializeTo(target SiteMaterializer) *SiteStream {
	next := NewSiteStream(1)

	go func() {
		for res := range stream.Outlet {
			if res.Err == nil {
				res.Err = target.Materialize(res.Key, res.Substituted, res.Terminated)
			}
			next.Outlet <- res
		}
		next.Close()
	}()

	return next
}

// Materializers hands each site to every member in order, stopping at the first error.
type Materializers []SiteMaterializer

func (all Materializers) Materialize(key SiteKey, substituted, terminated *Framework) error {
	for _, target := range all {
		if err := target.Materialize(key, substituted, terminated); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every member and returns the first error.
func (all Materializers) Close() error {
	var first error
	for _, target := range all {
		if err := target.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
