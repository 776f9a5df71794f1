package cmd

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/alec-rabold/zipview/pkg/reader"
	"github.com/alec-rabold/zipview/pkg/zipfile"
)

var (
	file, outFile string
	verify        bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <archive>",
	Short: "Stream one stored entry out of a zip archive",
	Long: `Streams the bytes of a stored entry directly from the archive,
	without extracting anything else.

	ex:
	zipview extract album.zip -f photos/001.jpg > 001.jpg
	zipview extract album.zip -f photos/001.jpg -o 001.jpg --verify
	zipview extract -b myBucket album.zip -f photos/001.jpg -o 001.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if file == "" {
			return fmt.Errorf("--file is required")
		}
		// match on decoded names so --file can be given as typed
		a, err := zipfile.Open(args[0], opener(cmd.Context(), args[0]), func(h *reader.DirectoryHeader) bool {
			return displayName(h.Filename) == file
		})
		if err != nil {
			return err
		}
		if len(a.Entries()) == 0 {
			return fmt.Errorf("%s in %s: %w", file, args[0], zipfile.ErrNotFound)
		}
		e := a.Entries()[0]

		var out io.Writer = cmd.OutOrStdout()
		if outFile != "" {
			f, err := os.OpenFile(outFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
			if err != nil {
				log.Errorf("error opening file (name: %s), err: %v", outFile, err)
				return err
			}
			defer func() {
				if err := f.Close(); err != nil {
					log.Errorf("error closing file (name: %s), err: %v", outFile, err)
				}
			}()
			out = f
		}

		if verify {
			b, err := a.ReadEntry(e, true)
			if err != nil {
				return err
			}
			_, err = out.Write(b)
			return err
		}

		rc, err := a.OpenEntry(e)
		if err != nil {
			return err
		}
		defer rc.Close()
		n, err := io.Copy(out, rc)
		if err != nil {
			log.Errorf("error writing entry (name: %s), err: %v", file, err)
			return err
		}
		log.WithFields(log.Fields{"entry": file, "bytes": n}).Info("extracted")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVarP(&file, "file", "f", "", "(required) name of the entry to extract")
	extractCmd.Flags().StringVarP(&outFile, "out", "o", "", "file to write to (default stdout)")
	extractCmd.Flags().BoolVar(&verify, "verify", false, "check the CRC-32 before writing")
}
