package main

import (
	"fmt"
	"os"

	"github.com/genricoloni/multiview/internal/config"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

const appName = "multiview"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Watch several synchronized streams side by side",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("config", "", "Read configuration from this TOML file")
	root.PersistentFlags().String("log-level", "", "Override the log level (debug, info, warn, error)")
	root.PersistentFlags().String("backend", "", "Media backend to use (mpv, memory)")

	root.AddCommand(newPlayCmd(), newVersionCmd())
	return root
}

// flagsFrom collects the persistent flags that were set on the command line
func flagsFrom(cmd *cobra.Command) Flags {
	flags := Flags{
		ConfigFile: lo.Must(cmd.Flags().GetString("config")),
		Overrides:  make(map[string]any),
	}
	for name, key := range map[string]string{
		"log-level": config.KeyLogLevel,
		"backend":   config.KeyBackend,
	} {
		if cmd.Flags().Changed(name) {
			flags.Overrides[key] = lo.Must(cmd.Flags().GetString(name))
		}
	}
	return flags
}
