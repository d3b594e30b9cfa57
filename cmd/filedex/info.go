package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jamesainslie/filedex/pkg/filedex/archive"
	"github.com/jamesainslie/filedex/pkg/filedex/input"
)

type infoOutput struct {
	Path  string       `json:"path" yaml:"path"`
	First string       `json:"first_path" yaml:"first_path"`
	Last  string       `json:"last_path" yaml:"last_path"`
	Info  archive.Info `json:"archive" yaml:"archive"`
}

func newInfoCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "info <input_file>",
		Short: "Show archive metadata",
		Long: `Verify an archive and print its metadata: format version, build id,
creation time, path count, sizes and checksum.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInfo(args[0], format)
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", "text", "output format: text, json, yaml")
	return cmd
}

func (a *app) runInfo(path, format string) error {
	if err := input.Validate(path); err != nil {
		return err
	}
	ix, info, err := archive.Read(path)
	if err != nil {
		return err
	}
	first, last := ix.Bounds()
	_ = ix.Close()

	out := infoOutput{Path: path, First: first, Last: last, Info: info}
	switch format {
	case "text", "":
		writeInfoText(a.stdout, out)
		return nil
	case "json":
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "yaml":
		enc := yaml.NewEncoder(a.stdout)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown info format %q (want text, json or yaml)", format)
	}
}

func writeInfoText(w io.Writer, out infoOutput) {
	info := out.Info
	fmt.Fprintf(w, "Archive:      %s\n", out.Path)
	fmt.Fprintf(w, "Format:       v%d, %s\n", info.Version, info.Compression)
	fmt.Fprintf(w, "Build ID:     %s\n", info.BuildID)
	fmt.Fprintf(w, "Created:      %s (%s)\n", info.Created.Local().Format("2006-01-02 15:04:05"), humanize.Time(info.Created))
	fmt.Fprintf(w, "Paths:        %s\n", humanize.Comma(int64(info.Paths)))
	fmt.Fprintf(w, "Structure:    %s\n", humanize.Bytes(info.StructureSize))
	fmt.Fprintf(w, "File size:    %s (%.1fx)\n", humanize.Bytes(uint64(info.FileSize)), info.Ratio())
	fmt.Fprintf(w, "Checksum:     xxhash64 %016x\n", info.Checksum)
	if info.Paths > 0 {
		fmt.Fprintf(w, "First path:   %s\n", out.First)
		fmt.Fprintf(w, "Last path:    %s\n", out.Last)
	}
}
