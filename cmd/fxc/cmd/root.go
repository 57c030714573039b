package cmd

import (
	"fmt"
	"os"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is filled when building with make, but *not* when installing
// via "go install".
var Version string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "fxc",
	Short: "A compiler for the FX effect language.",
	Long:  "A front-end compiler turning FX effect source into SPIR-V plus technique/pass metadata.",
	Run: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "version") {
			printVersion()
			return
		}
		fmt.Println(cmd.UsageString())
	},
}

func printVersion() {
	fmt.Print("fxc ")
	if Version != "" {
		// Built via "make"
		fmt.Printf("%s", Version)
	} else if info, ok := debug.ReadBuildInfo(); ok {
		// Built via "go install"
		fmt.Printf("%s", info.Main.Version)
	} else {
		// Unknown, perhaps "go run"
		fmt.Printf("(unknown version)")
	}
	fmt.Println()
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetFlag reads a boolean flag, treating a lookup failure as a
// programming error the way go-corset's flag helpers do.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		log.Fatal(err)
	}
	return r
}

// GetString reads a string flag.
func GetString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		log.Fatal(err)
	}
	return r
}

// GetStringSlice reads a repeated string flag.
func GetStringSlice(cmd *cobra.Command, flag string) []string {
	r, err := cmd.Flags().GetStringSlice(flag)
	if err != nil {
		log.Fatal(err)
	}
	return r
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	rootCmd.Flags().Bool("version", false, "print version")
}
