// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Package batch parses many independent JSON documents concurrently.
//
// Each document is parsed by a single goroutine drawn from a bounded worker
// pool; a document is never split among workers. Results are reported in
// the order of the input documents.
package batch

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/creachadair/jnode"
	"github.com/panjf2000/ants/v2"
)

// Options control a batch parse. A nil *Options is ready for use and
// provides default values.
type Options struct {
	// The parser used for each document. If nil, a parser with default
	// settings is used. The parser is shared by all workers.
	Parser *jnode.Parser

	// The maximum number of documents parsed concurrently. If zero or
	// negative, runtime.GOMAXPROCS(0) is used.
	Workers int
}

func (o *Options) parser() *jnode.Parser {
	if o == nil || o.Parser == nil {
		return jnode.NewParser()
	}
	return o.Parser
}

func (o *Options) workers(n int) int {
	w := runtime.GOMAXPROCS(0)
	if o != nil && o.Workers > 0 {
		w = o.Workers
	}
	return max(1, min(w, n))
}

// A Result is the outcome of parsing one document. Exactly one of Tree and
// Err is non-nil.
type Result struct {
	Tree *jnode.Node
	Err  error
}

// Parse parses each of docs and returns a Result for each, in the same order.
//
// If ctx ends before all documents have been parsed, documents not yet
// started report the error from ctx. Parse reports an error only if it is
// unable to start the worker pool.
func Parse(ctx context.Context, docs [][]byte, opts *Options) ([]Result, error) {
	out := make([]Result, len(docs))
	if len(docs) == 0 {
		return out, nil
	}
	p := opts.parser()

	pool, err := ants.NewPool(opts.workers(len(docs)))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			for j := i; j < len(docs); j++ {
				out[j].Err = err
			}
			break
		}

		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				out[i].Err = err
				return
			}
			out[i].Tree, out[i].Err = p.Parse(doc)
		}); err != nil {
			wg.Done()
			out[i].Err = fmt.Errorf("submit document %d: %w", i, err)
		}
	}
	wg.Wait()
	return out, nil
}

// Errors returns an error combining the errors of all failed results, each
// labelled with the offset of its document, or nil if every result succeeded.
func Errors(rs []Result) error {
	var errs []error
	for i, r := range rs {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("document %d: %w", i, r.Err))
		}
	}
	return errors.Join(errs...)
}
