// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Program jdump parses JSON documents and prints their trees, one node per
// line, with the children of each object and array indented beneath it.
//
// Usage:
//
//	jdump [options] [file ...]
//
// With no file arguments, jdump reads a single document from stdin. When
// several files are named, they are parsed concurrently and printed in the
// order given.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/creachadair/jnode"
	"github.com/creachadair/jnode/batch"
)

var (
	maxDepth    = flag.Int("max-depth", jnode.DefaultMaxDepth, "Maximum nesting depth")
	maxInput    = flag.Int("max-input", 0, "Maximum input size in bytes (0 means no limit)")
	allowCmts   = flag.Bool("comments", false, "Allow comments and trailing commas (JWCC)")
	allowTComma = flag.Bool("trailing-commas", false, "Allow trailing commas in objects and arrays")
	decodeUTF8  = flag.Bool("utf8", false, "Transcode \\u escapes to UTF-8")
	workers     = flag.Int("workers", 0, "Number of files to parse concurrently (0 means GOMAXPROCS)")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [options] [file ...]\n\nOptions:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	log.SetFlags(0)
	log.SetPrefix("jdump: ")

	p := jnode.NewParser()
	p.MaxDepth(*maxDepth)
	p.MaxInputSize(*maxInput)
	p.AllowComments(*allowCmts)
	p.AllowTrailingCommas(*allowTComma)
	p.DecodeUTF8(*decodeUTF8)

	names := flag.Args()
	docs, err := readInputs(names)
	if err != nil {
		log.Fatalf("Reading input: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	rs, err := batch.Parse(ctx, docs, &batch.Options{Parser: p, Workers: *workers})
	if err != nil {
		log.Fatalf("Parsing: %v", err)
	}

	var failed bool
	for i, r := range rs {
		name := "<stdin>"
		if len(names) != 0 {
			name = names[i]
		}
		if r.Err != nil {
			log.Printf("%s: %v", name, r.Err)
			failed = true
			continue
		}
		if len(names) > 1 {
			fmt.Printf("==> %s <==\n", name)
		}
		if err := dump(os.Stdout, r.Tree); err != nil {
			log.Fatalf("%s: %v", name, err)
		}
	}
	if failed {
		os.Exit(1)
	}
}

// readInputs reads the contents of the named files, or of stdin if names is
// empty.
func readInputs(names []string) ([][]byte, error) {
	if len(names) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, err
		}
		return [][]byte{data}, nil
	}
	docs := make([][]byte, len(names))
	for i, name := range names {
		data, err := os.ReadFile(name)
		if err != nil {
			return nil, err
		}
		docs[i] = data
	}
	return docs, nil
}
