package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jamesainslie/filedex/pkg/filedex/archive"
	"github.com/jamesainslie/filedex/pkg/filedex/index"
	"github.com/jamesainslie/filedex/pkg/filedex/input"
	"github.com/jamesainslie/filedex/pkg/filedex/manifest"
)

// Input kinds accepted by create --from.
const (
	fromJSON  = "json"
	fromLines = "lines"
	fromDir   = "dir"
)

type createFlags struct {
	compression string
	level       int
	types       []string
	exclude     []string
	from        string
}

func newCreateCmd(a *app) *cobra.Command {
	f := &createFlags{}
	cmd := &cobra.Command{
		Use:   "create <input_file> [output_file]",
		Short: "Build an index archive from a manifest",
		Long: `Build an index archive from the file list of a backup manifest.

The input is a JSON array of records with a "path" field, such as the
filelist.json inside a *.dlist.zip backup volume. A leading byte order mark
is ignored. Use --from lines to rebuild from "filedex export" output, or
--from dir to index a live directory tree.

The archive is written atomically; an existing file is only replaced once
the new archive is complete.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCreate(cmd, f, args)
		},
	}

	cmd.Flags().StringVarP(&f.compression, "compression", "c", "", "archive compression: "+strings.Join(archive.Compressions(), ", "))
	cmd.Flags().IntVarP(&f.level, "level", "l", 0, "compression level (0 = codec default)")
	cmd.Flags().StringSliceVarP(&f.types, "type", "t", nil, "only index these record types (File, Folder, Symlink)")
	cmd.Flags().StringSliceVarP(&f.exclude, "exclude", "e", nil, "skip paths matching these glob patterns")
	cmd.Flags().StringVar(&f.from, "from", fromJSON, "input kind: json, lines or dir")
	return cmd
}

func (a *app) runCreate(cmd *cobra.Command, f *createFlags, args []string) error {
	log := a.logger.Component("create")

	inputPath := args[0]
	outputPath := a.cfg.Output
	if len(args) == 2 {
		outputPath = args[1]
	}

	compression := a.cfg.Compression
	if cmd.Flags().Changed("compression") {
		compression = f.compression
	}
	codec, err := archive.ParseCompression(compression)
	if err != nil {
		return err
	}
	level := a.cfg.CompressionLevel
	if cmd.Flags().Changed("level") {
		level = f.level
	}

	opts, err := sourceOptions(f, a)
	if err != nil {
		return err
	}

	src, closeSrc, err := openSource(cmd, f.from, inputPath, opts)
	if err != nil {
		return err
	}
	defer closeSrc()

	log.Debug("building index", "input", inputPath, "from", f.from)
	ix, stats, err := index.FromSource(src, index.WithLogger(a.logger.Component("index")))
	if err != nil {
		return err
	}
	defer ix.Close()

	info, err := archive.Write(outputPath, ix, archive.WriteOptions{
		Compression: codec,
		Level:       level,
		Logger:      a.logger.Component("archive"),
	})
	if err != nil {
		return fmt.Errorf("writing %s: %w", outputPath, err)
	}

	log.Info("index written", "path", outputPath)
	a.printInfo("Indexed %s paths into %s (%s, %s)",
		humanize.Comma(int64(stats.Distinct)),
		outputPath,
		humanize.Bytes(uint64(info.FileSize)),
		info.Compression)
	if d := stats.Duplicates(); d > 0 {
		a.printInfo("Skipped %s duplicate paths", humanize.Comma(int64(d)))
	}
	return nil
}

func sourceOptions(f *createFlags, a *app) ([]manifest.Option, error) {
	opts := []manifest.Option{manifest.WithLogger(a.logger.Component("manifest"))}

	if len(f.types) > 0 {
		types, err := manifest.ParseEntryTypes(f.types)
		if err != nil {
			return nil, err
		}
		opts = append(opts, manifest.WithTypes(types...))
	}
	if len(f.exclude) > 0 {
		globs, err := manifest.CompileExcludes(f.exclude)
		if err != nil {
			return nil, err
		}
		opts = append(opts, manifest.WithExclude(globs...))
	}
	return opts, nil
}

// openSource validates the input and returns the path source for kind.
func openSource(cmd *cobra.Command, kind, path string, opts []manifest.Option) (manifest.Source, func(), error) {
	switch kind {
	case fromDir:
		if err := input.ValidateDir(path); err != nil {
			return nil, nil, err
		}
		return manifest.NewDirSource(cmd.Context(), path, opts...), func() {}, nil

	case fromJSON, fromLines:
		file, err := input.Open(path)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() { _ = file.Close() }
		if kind == fromLines {
			return manifest.NewLineSource(file, opts...), closeFn, nil
		}
		return manifest.NewExtractor(file, opts...), closeFn, nil

	default:
		return nil, nil, fmt.Errorf("unknown input kind %q (want %s, %s or %s)", kind, fromJSON, fromLines, fromDir)
	}
}
