package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// Execute runs the command line in args. Shared resources are released and
// the metrics textfile written on every path, failed commands included.
func Execute(ctx context.Context, gitsha string, args []string) error {
	a := &app{}
	defer a.close(ctx)
	root := newRoot(ctx, gitsha, a)
	root.SetArgs(args)
	return root.Execute()
}

func newRoot(ctx context.Context, gitsha string, a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "img2pacs",
		Short:         "convert images to Secondary Capture DICOM and send them to an archive",
		Long:          "img2pacs resolves patient names from the archive, wraps a grayscale image in a Secondary Capture object and stores it.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			envFile, _ := cmd.Flags().GetString("env-file")
			logLevel, _ := cmd.Flags().GetString("log-level")
			if !cmd.Flags().Changed("log-level") {
				logLevel = ""
			}
			return a.init(ctx, envFile, logLevel)
		},
		Run: func(cmd *cobra.Command, args []string) {
			printCommandTree(cmd, 0)
		},
	}
	cmd.AddCommand(
		NewVersionCmd(ctx, gitsha),
		NewLookupCmd(ctx, a),
		NewConvertCmd(ctx, a),
		NewSendCmd(ctx, a),
		NewInspectCmd(ctx),
		NewServeCmd(ctx, a),
	)
	pf := cmd.PersistentFlags()
	pf.String("log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR), overrides LOG_LEVEL")
	pf.String("env-file", ".env", "optional dotenv file read before the environment")
	return cmd
}

func printCommandTree(cmd *cobra.Command, indent int) {
	fmt.Println(strings.Repeat("\t", indent), cmd.Use+":", cmd.Short)
	for _, subCmd := range cmd.Commands() {
		printCommandTree(subCmd, indent+1)
	}
}

func NewVersionCmd(ctx context.Context, gitsha string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "git sha for this build",
		Long:  "git sha for this build",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(gitsha)
		},
	}
	return cmd
}
