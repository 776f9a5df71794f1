package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/alec-rabold/zipview/pkg/aws"
	"github.com/alec-rabold/zipview/pkg/zipfile"
)

var (
	// VERSION is set during build
	VERSION string
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "zipview",
	Short: "List and stream the stored images inside zip archives without extracting them",
	Long: `The zipview CLI reads the central directory of a zip archive, on disk or
	in S3, and streams the bytes of stored (uncompressed) entries straight out of
	the archive. It is meant for photo albums packed without compression.

	example:

		zipview list album.zip
		zipview list album.zip --ext .jpg,.png --encoding shift_jis
		zipview extract album.zip -f photos/001.jpg -o 001.jpg
		zipview list --bucket myBucket album.zip`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := log.ParseLevel(viper.GetString("log-level"))
		if err != nil {
			return err
		}
		log.SetLevel(level)
		return nil
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute(version string) {
	VERSION = version
	rootCmd.Version = version

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.zipview.yaml)")
	rootCmd.PersistentFlags().String("log-level", "warning", "log level (debug, info, warning, error)")
	rootCmd.PersistentFlags().String("encoding", "", "IANA charset of entry names, e.g. shift_jis (default: raw bytes)")
	rootCmd.PersistentFlags().StringP("bucket", "b", "", "read the archive from this S3 bucket, using the argument as the key")

	for _, name := range []string{"log-level", "encoding", "bucket"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(err)
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".zipview" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".zipview")
	}

	viper.SetEnvPrefix("zipview")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.Debugf("using config file: %s", viper.ConfigFileUsed())
	}
}

// opener picks a local file or, with --bucket, an S3 object.
func opener(ctx context.Context, archive string) zipfile.Opener {
	if bucket := viper.GetString("bucket"); bucket != "" {
		return zipfile.S3Opener(ctx, aws.NewClient(), bucket, archive)
	}
	return zipfile.FileOpener(archive)
}

// displayName decodes a raw entry name with the configured charset,
// falling back to the raw bytes.
func displayName(raw []byte) string {
	name, err := zipfile.DecodeName(raw, viper.GetString("encoding"))
	if err != nil {
		log.Warnf("error decoding entry name, err: %v", err)
		return string(raw)
	}
	return name
}
