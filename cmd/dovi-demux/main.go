/*
NAME
  main.go

DESCRIPTION
  dovi-demux is a command-line tool that demultiplexes a raw HEVC
  bitstream carrying Dolby Vision enhancement data into its base-layer,
  enhancement-layer and RPU metadata streams, optionally converting
  the RPU metadata to the MEL or profile 8.1 format while copying it
  through.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package main is the dovi-demux command-line entrypoint.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/dovi-demux/demux"
	"github.com/ausocean/dovi-demux/format"
	"github.com/ausocean/dovi-demux/rpu"
	"github.com/ausocean/dovi-demux/sink"
)

// Current software version.
const version = "v0.1.0"

// Log line prefix.
const pkg = "dovi-demux: "

// Logging defaults.
const (
	defaultLogMaxSize    = 100 // MB
	defaultLogMaxBackups = 5
	defaultLogMaxAge     = 28 // days
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "demux":
		runDemux(os.Args[2:])
	case "-version", "--version", "version":
		fmt.Println(version)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: dovi-demux demux [flags] <input|->")
	fmt.Fprintln(os.Stderr, "       dovi-demux --version")
}

func runDemux(args []string) {
	fs := flag.NewFlagSet("demux", flag.ExitOnError)

	blPath := fs.String("bl", "", "base-layer output path")
	elPath := fs.String("el", "", "enhancement-layer output path")
	rpuPath := fs.String("rpu", "", "RPU metadata output path")
	mode := fs.Int("mode", int(demux.ModeCopy), "RPU handling: -1 copy through, 0 validate, 1 MEL, 2 profile 8.1")
	formatFlag := fs.Int("format", int(format.Raw), "input container format: 0 raw Annex-B HEVC (the only format supported)")

	inputBuf := fs.Int("input-buffer", demux.DefaultChunkSize, "input read chunk size, bytes")
	blBuf := fs.Int("bl-buffer", sink.DefaultBufferSize*2, "BL sink buffer size, bytes")
	elBuf := fs.Int("el-buffer", sink.DefaultBufferSize, "EL sink buffer size, bytes")
	rpuBuf := fs.Int("rpu-buffer", sink.DefaultBufferSize, "RPU sink buffer size, bytes")

	logPath := fs.String("log", "", "log file path (stderr if unset)")
	logMaxSize := fs.Int("log-max-size-mb", defaultLogMaxSize, "log file max size before rotation, MB")
	logMaxBackups := fs.Int("log-max-backups", defaultLogMaxBackups, "log file max rotated backups")
	logMaxAge := fs.Int("log-max-age-days", defaultLogMaxAge, "log file max age, days")
	quiet := fs.Bool("quiet", false, "suppress informational logging")

	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}

	if fs.NArg() != 1 {
		usage()
		os.Exit(2)
	}
	inputPath := fs.Arg(0)

	var logOut io.Writer = os.Stderr
	if *logPath != "" {
		logOut = &lumberjack.Logger{
			Filename:   *logPath,
			MaxSize:    *logMaxSize,
			MaxBackups: *logMaxBackups,
			MaxAge:     *logMaxAge,
		}
	}
	verbosity := logging.Info
	if *quiet {
		verbosity = logging.Error
	}
	log := logging.New(verbosity, logOut, true)

	if err := format.Format(*formatFlag).Validate(); err != nil {
		fatal(log, err, 0)
	}

	in, err := openInput(inputPath)
	if err != nil {
		fatal(log, err, 0)
	}
	defer in.Close()

	set, err := openSinks(*blPath, *elPath, *rpuPath, *blBuf, *elBuf, *rpuBuf)
	if err != nil {
		fatal(log, err, 0)
	}
	defer set.Close()

	m := demux.Mode(*mode)
	if m < demux.ModeCopy || m > demux.ModeTo81 {
		fatal(log, errors.Errorf("dovi-demux: unsupported mode %d", *mode), 0)
	}

	nalErrors := 0
	s := &demux.Splitter{
		ChunkSize: *inputBuf,
		Mode:      m,
		Log:       log,
		OnRPUError: func(err error, nalIndex int) {
			nalErrors++
			log.Warning("rpu decode failed, copying through unmodified", "nal", nalIndex, "error", err.Error())
		},
	}

	log.Info("starting demux", "version", version, "mode", *mode, "input", inputPath)

	if err := s.Split(in, set); err != nil {
		fatal(log, err, 0)
	}

	if nalErrors > 0 {
		log.Warning("completed with rpu decode failures", "count", nalErrors)
	}
	log.Info("demux complete")
}

// openInput opens path for reading, or wraps standard input if path
// is "-".
func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "dovi-demux: opening input")
	}
	return f, nil
}

// openSinks opens the requested output files and wires them into a
// sink.Set, reporting sink.ErrNoSink if none were requested.
func openSinks(blPath, elPath, rpuPath string, blBuf, elBuf, rpuBuf int) (*sink.Set, error) {
	set := &sink.Set{}

	if blPath != "" {
		f, err := os.Create(blPath)
		if err != nil {
			return nil, errors.Wrap(err, "dovi-demux: creating BL output")
		}
		set.BL = sink.New(f, blBuf)
	}
	if elPath != "" {
		f, err := os.Create(elPath)
		if err != nil {
			return nil, errors.Wrap(err, "dovi-demux: creating EL output")
		}
		set.EL = sink.New(f, elBuf)
	}
	if rpuPath != "" {
		f, err := os.Create(rpuPath)
		if err != nil {
			return nil, errors.Wrap(err, "dovi-demux: creating RPU output")
		}
		set.RPU = sink.New(f, rpuBuf)
	}

	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}

// fatal reports a single human-readable error line identifying the
// error kind, and exits with a non-zero status. nalIndex is included
// when known and non-zero.
func fatal(log logging.Logger, err error, nalIndex int) {
	kind := "error"
	switch errors.Cause(err) {
	case sink.ErrNoSink:
		kind = "no sink configured"
	case rpu.ErrTruncated:
		kind = "truncated RPU"
	case rpu.ErrMalformed:
		kind = "malformed RPU"
	case format.ErrUnsupported:
		kind = "unsupported input format"
	}
	if nalIndex > 0 {
		log.Error(pkg+kind, "nal", nalIndex, "error", err.Error())
	} else {
		log.Error(pkg+kind, "error", err.Error())
	}
	os.Exit(1)
}
