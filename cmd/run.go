// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
	"github.com/hashicorp/go-zipper"
	"github.com/hashicorp/go-zipper/telemetry"
	"github.com/pkg/errors"
)

// Globals are the cli parameters shared by all commands
type Globals struct {
	Type              string           `short:"t" help:"Archive type (${types}). Detected from the file name if empty."`
	Password          string           `short:"p" help:"Password for encrypted archives."`
	Compression       string           `short:"c" default:"deflate" help:"Compression of new zip entries (store, deflate, bzip2, zstd, xz)."`
	Overwrite         bool             `short:"O" default:"true" negatable:"" help:"Overwrite existing files on extraction."`
	ContinueOnError   bool             `short:"C" help:"Continue on error."`
	MaxFiles          int64            `optional:"" default:"100000" help:"Maximum files that are extracted before stop. (disable check: -1)"`
	MaxExtractionSize int64            `optional:"" default:"1073741824" help:"Maximum extraction size that allowed is (in bytes). (disable check: -1)"`
	Telemetry         bool             `short:"T" help:"Print telemetry data to log after extraction."`
	CloudwatchSource  string           `name:"cloudwatch-source" help:"Publish telemetry data to CloudWatch Events with this source."`
	Verbose           bool             `short:"v" help:"Verbose logging."`
	Version           kong.VersionFlag `short:"V" help:"Print release version information."`
}

// CLI are the cli parameters for the zipper binary
type CLI struct {
	Globals

	List    ListCmd    `cmd:"" help:"List the files of an archive."`
	Add     AddCmd     `cmd:"" help:"Add files and directories to an archive. The archive is created if it does not exist."`
	Extract ExtractCmd `cmd:"" help:"Extract files of an archive."`
	Remove  RemoveCmd  `cmd:"" help:"Remove files from an archive."`
	Cat     CatCmd     `cmd:"" help:"Print the content of a file of an archive."`
}

// session holds everything a command needs to run
type session struct {
	ctx     context.Context
	globals *Globals
	cfg     *zipper.Config
	stdout  io.Writer
}

// open opens the archive at path with the configured type and password
func (s *session) open(path string) (*zipper.Zipper, error) {
	archiveType := s.globals.Type
	if archiveType == "" {
		archiveType = zipper.DetectArchiveType(path)
	}

	z := zipper.New(s.cfg)
	if err := z.Make(path, archiveType); err != nil {
		return nil, errors.Wrapf(err, "cannot open %s", path)
	}
	if s.globals.Password != "" {
		if err := z.UsePassword(s.globals.Password); err != nil {
			z.Close()
			return nil, errors.Wrap(err, "cannot use password")
		}
	}
	return z, nil
}

// ListCmd lists the files of an archive
type ListCmd struct {
	Archive string `arg:"" name:"archive" type:"existingfile" help:"Path to archive."`
	Filter  string `short:"f" help:"Delimited regular expression the listed names must match, e.g. /\\.log$/i."`
}

// Run lists the files.
func (c *ListCmd) Run(s *session) error {
	z, err := s.open(c.Archive)
	if err != nil {
		return err
	}
	defer z.Close()

	names, err := z.ListFiles(c.Filter)
	if err != nil {
		return errors.Wrap(err, "cannot list files")
	}
	listed := make(map[string]bool, len(names))
	for _, name := range names {
		listed[name] = true
	}

	size := color.New(color.FgCyan)
	return z.Repository().Each(func(name string, info zipper.EntryInfo) error {
		if !listed[name] {
			return nil
		}
		_, err := fmt.Fprintf(s.stdout, "%s %s\n", size.Sprintf("%12d", info.Size), name)
		return err
	})
}

// AddCmd adds files to an archive
type AddCmd struct {
	Archive  string   `arg:"" name:"archive" help:"Path to archive."`
	Paths    []string `arg:"" name:"path" optional:"" help:"Files and directories to add."`
	Folder   string   `short:"f" help:"Folder in the archive to add to."`
	As       string   `help:"Name in the archive for a single added file."`
	EmptyDir []string `name:"empty-dir" help:"Empty directories to add."`
}

// Run adds the files.
func (c *AddCmd) Run(s *session) error {
	if c.As != "" && len(c.Paths) != 1 {
		return errors.New("--as needs exactly one path")
	}

	z, err := s.open(c.Archive)
	if err != nil {
		return err
	}
	z.Folder(c.Folder)

	if c.As != "" {
		err = z.AddAs(c.Paths[0], c.As)
	} else {
		err = z.Add(c.Paths...)
	}
	// without close, the staged changes are dropped
	if err != nil {
		return errors.Wrap(err, "cannot add")
	}
	for _, dir := range c.EmptyDir {
		if err := z.AddEmptyDir(dir); err != nil {
			return errors.Wrapf(err, "cannot add directory %s", dir)
		}
	}
	return errors.Wrap(z.Close(), "cannot write archive")
}

// ExtractCmd extracts files of an archive
type ExtractCmd struct {
	Archive     string   `arg:"" name:"archive" type:"existingfile" help:"Path to archive."`
	Destination string   `arg:"" name:"destination" optional:"" default:"." help:"Output directory."`
	Files       []string `arg:"" name:"files" optional:"" help:"Names of files to skip, or to extract with --whitelist."`
	Whitelist   bool     `short:"w" help:"Extract only the given files."`
	Exact       bool     `short:"e" help:"Compare names exactly instead of by prefix."`
	Regex       string   `short:"r" help:"Extract files matching the delimited regular expression, e.g. /\\.txt$/."`
	Folder      string   `short:"f" help:"Folder in the archive to extract from."`
}

// mode returns the extract mode of the flags
func (c *ExtractCmd) mode() zipper.ExtractMode {
	mode := zipper.Blacklist
	if c.Whitelist {
		mode = zipper.Whitelist
	}
	if c.Exact {
		mode |= zipper.ExactMatch
	}
	return mode
}

// Run extracts the files.
func (c *ExtractCmd) Run(s *session) error {
	z, err := s.open(c.Archive)
	if err != nil {
		return err
	}
	defer z.Close()
	z.Folder(c.Folder)

	if c.Regex != "" {
		err = z.ExtractMatchingRegex(s.ctx, c.Destination, c.Regex)
	} else {
		err = z.ExtractTo(s.ctx, c.Destination, c.Files, c.mode())
	}
	return errors.Wrap(err, "error during extraction")
}

// RemoveCmd removes files from an archive
type RemoveCmd struct {
	Archive string   `arg:"" name:"archive" type:"existingfile" help:"Path to archive."`
	Names   []string `arg:"" name:"name" help:"Names of the files to remove."`
	Prefix  bool     `short:"P" help:"Remove all files starting with one of the names."`
}

// Run removes the files.
func (c *RemoveCmd) Run(s *session) error {
	z, err := s.open(c.Archive)
	if err != nil {
		return err
	}

	if c.Prefix {
		err = z.RemoveMatching(c.Names)
	} else {
		for _, name := range c.Names {
			if err = z.Remove(name); err != nil {
				break
			}
		}
	}
	if err != nil {
		return errors.Wrap(err, "cannot remove")
	}
	return errors.Wrap(z.Close(), "cannot write archive")
}

// CatCmd prints a file of an archive
type CatCmd struct {
	Archive string `arg:"" name:"archive" type:"existingfile" help:"Path to archive."`
	Name    string `arg:"" name:"name" help:"Name of the file in the archive."`
}

// Run prints the file.
func (c *CatCmd) Run(s *session) error {
	z, err := s.open(c.Archive)
	if err != nil {
		return err
	}
	defer z.Close()

	content, err := z.FileContent(c.Name)
	if err != nil {
		return errors.Wrap(err, "cannot read file")
	}
	_, err = s.stdout.Write(content)
	return err
}

// config creates the zipper configuration of the globals
func (g *Globals) config(ctx context.Context, logger *slog.Logger) (*zipper.Config, error) {
	compression, err := zipper.ParseCompressionMethod(g.Compression)
	if err != nil {
		return nil, err
	}

	// setup telemetry hooks
	var hooks []zipper.TelemetryHook
	if g.Telemetry {
		hooks = append(hooks, telemetry.NewLogHook(logger))
	}
	if g.CloudwatchSource != "" {
		client, err := telemetry.NewCloudWatchClient(ctx)
		if err != nil {
			return nil, err
		}
		hooks = append(hooks, telemetry.NewCloudWatchHook(client, g.CloudwatchSource, logger))
	}

	return zipper.NewConfig(
		zipper.WithCompression(compression),
		zipper.WithContinueOnError(g.ContinueOnError),
		zipper.WithLogger(logger),
		zipper.WithMaxExtractionSize(g.MaxExtractionSize),
		zipper.WithMaxFiles(g.MaxFiles),
		zipper.WithOverwrite(g.Overwrite),
		zipper.WithTelemetryHook(telemetry.Chain(hooks...)),
	), nil
}

// Execute parses args and runs the selected command. Output is written to
// stdout, logs and usage to stderr.
func Execute(ctx context.Context, args []string, stdout io.Writer, stderr io.Writer, version string) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("zipper"),
		kong.Description("Add, list and extract files of zip, tar, rar and 7z archives"),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Vars{
			"version": version,
			"types":   strings.Join(zipper.ArchiveTypes(), ", "),
		},
	)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Check for verbose output
	logLevel := slog.LevelError
	if cli.Verbose {
		logLevel = slog.LevelDebug
	} else if cli.Telemetry {
		logLevel = slog.LevelInfo
	}

	// setup logger
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	cfg, err := cli.Globals.config(ctx, logger)
	if err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	return kctx.Run(&session{
		ctx:     ctx,
		globals: &cli.Globals,
		cfg:     cfg,
		stdout:  stdout,
	})
}

// Run the entrypoint into zipper as a cli tool
func Run(version, commit, date string) {
	versionInfo := fmt.Sprintf("%s (%s), commit %s, built at %s", filepath.Base(os.Args[0]), version, commit, date)
	if err := Execute(context.Background(), os.Args[1:], color.Output, os.Stderr, versionInfo); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "zipper: %s\n", err)
		os.Exit(1)
	}
}
