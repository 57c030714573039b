package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fxsl/fxc"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// checkCmd parses one or more effect files and reports diagnostics
// without writing any output.
var checkCmd = &cobra.Command{
	Use:   "check [flags] effect_file(s)",
	Short: "Parse effect files and report diagnostics.",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		if GetFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}
		failed := false
		for _, input := range args {
			source, err := os.ReadFile(input)
			if err != nil {
				log.Fatal(err)
			}
			result := fxc.CompileWithOptions(string(source), filepath.Base(input), fxc.CompileOptions{
				Logger: log.StandardLogger(),
			})
			if result.Diagnostics.Len() > 0 {
				fmt.Fprint(os.Stderr, result.Diagnostics.FormatAll(string(source)))
			}
			if !result.Success {
				failed = true
			}
		}
		if failed {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
