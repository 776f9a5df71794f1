package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alec-rabold/zipview/pkg/reader"
	"github.com/alec-rabold/zipview/pkg/zipfile"
)

var (
	listExts       string
	listDirs       bool
	listAllMethods bool
)

var listCmd = &cobra.Command{
	Use:   "list <archive>",
	Short: "List the entries of a zip archive",
	Long: `Lists the central directory of a zip archive. By default only stored
	JPEG images are shown, the entries extract can stream.

	ex:
	zipview list album.zip
	zipview list album.zip --ext '*'
	zipview list album.zip --ext .png --dirs --all-methods`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := zipfile.Open(args[0], opener(cmd.Context(), args[0]), listFilter())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, e := range a.Entries() {
			fmt.Fprintf(w, "%s\t%s\t%d\n", displayName(e.Filename), method(e), e.UncompressedSize)
		}
		return w.Flush()
	},
}

func listFilter() reader.Filter {
	var filters []reader.Filter
	if exts := strings.TrimSpace(listExts); exts != "*" {
		filters = append(filters, zipfile.Any(zipfile.Extensions(strings.Split(exts, ",")...), reader.Filter((*reader.DirectoryHeader).IsDir)))
	}
	if !listDirs {
		filters = append(filters, zipfile.NotDirectory)
	}
	if !listAllMethods {
		filters = append(filters, zipfile.StoredOnly)
	}
	return zipfile.All(filters...)
}

func method(e *reader.DirectoryHeader) string {
	switch {
	case e.IsDir():
		return "dir"
	case e.Method == reader.Store:
		return "stored"
	case e.Method == reader.Deflate:
		return "deflate"
	default:
		return fmt.Sprintf("method %d", e.Method)
	}
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVarP(&listExts, "ext", "e", ".jpg,.jpeg", "comma separated file extensions to list, '*' for all")
	listCmd.Flags().BoolVar(&listDirs, "dirs", false, "include directory entries")
	listCmd.Flags().BoolVar(&listAllMethods, "all-methods", false, "include compressed entries")
}
