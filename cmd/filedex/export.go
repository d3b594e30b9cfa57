package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jamesainslie/filedex/pkg/filedex/archive"
	"github.com/jamesainslie/filedex/pkg/filedex/input"
)

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <input_file> [output_file]",
		Short: "Write the indexed paths as plain text",
		Long: `Decode an archive and write every indexed path on its own line, in
lexicographic order. Without an output file the paths go to stdout.

The result can be turned back into an archive with
"filedex create --from lines".`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExport(args)
		},
	}
}

func (a *app) runExport(args []string) error {
	archivePath := args[0]
	if err := input.Validate(archivePath); err != nil {
		return err
	}
	ix, info, err := archive.Read(archivePath)
	if err != nil {
		return err
	}
	defer ix.Close()

	w := a.stdout
	var file *os.File
	if len(args) == 2 {
		file, err = os.Create(args[1])
		if err != nil {
			return fmt.Errorf("creating %s: %w", args[1], err)
		}
		defer file.Close()
		w = file
	}

	n, err := writeLines(w, ix.Walk)
	if err != nil {
		return fmt.Errorf("exporting %s: %w", archivePath, err)
	}
	if file != nil {
		if err := file.Close(); err != nil {
			return fmt.Errorf("closing %s: %w", args[1], err)
		}
		a.printInfo("Exported %s of %s paths to %s",
			humanize.Comma(int64(n)), humanize.Comma(int64(info.Paths)), args[1])
	}
	return nil
}

// writeLines writes every path produced by walk followed by a newline.
func writeLines(w io.Writer, walk func(func(string) error) error) (int, error) {
	bw := bufio.NewWriter(w)
	var n int
	err := walk(func(path string) error {
		n++
		if _, err := bw.WriteString(path); err != nil {
			return err
		}
		return bw.WriteByte('\n')
	})
	if err != nil {
		return n, err
	}
	return n, bw.Flush()
}
