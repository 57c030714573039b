package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fxsl/fxc"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// compileCmd compiles one effect file to a SPIR-V binary plus a JSON
// metadata side table.
var compileCmd = &cobra.Command{
	Use:   "compile [flags] effect_file",
	Short: "Compile an effect file to SPIR-V.",
	Long: `Compile an effect file to SPIR-V.
	The binary is written next to the input (or to -o) and the
	technique/pass/texture/sampler/uniform metadata to a sibling .json file.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		if GetFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}
		input := args[0]
		output := GetString(cmd, "output")
		if output == "" {
			output = strings.TrimSuffix(input, filepath.Ext(input)) + ".spv"
		}

		source, err := os.ReadFile(input)
		if err != nil {
			log.Fatal(err)
		}

		opts := fxc.CompileOptions{
			Pragmas: GetStringSlice(cmd, "pragma"),
			Logger:  log.StandardLogger(),
		}
		result := fxc.CompileWithOptions(string(source), filepath.Base(input), opts)

		if result.Diagnostics.Len() > 0 {
			fmt.Fprint(os.Stderr, result.Diagnostics.FormatAll(string(source)))
		}
		if !result.Success {
			os.Exit(1)
		}

		if err := os.WriteFile(output, result.SPIRV, 0o644); err != nil {
			log.Fatal(err)
		}
		meta, err := json.MarshalIndent(result.Module, "", "  ")
		if err != nil {
			log.Fatal(err)
		}
		metaPath := strings.TrimSuffix(output, filepath.Ext(output)) + ".json"
		if err := os.WriteFile(metaPath, meta, 0o644); err != nil {
			log.Fatal(err)
		}
		log.Debugf("wrote %s (%d bytes) and %s", output, len(result.SPIRV), metaPath)
	},
}

func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().StringP("output", "o", "", "output .spv path")
	compileCmd.Flags().StringSlice("pragma", nil, "pragma string to record in the metadata (repeatable)")
}
