package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewLookupCmd resolves a patient name from the archive
func NewLookupCmd(ctx context.Context, a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup <patient-id>",
		Short: "resolve a patient name from the archive",
		Long:  "Runs the find tool against the archive and prints the resolved patient name, Not Found, or Error Fetching.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			finder, err := a.patientFinder(ctx)
			if err != nil {
				return err
			}
			outcome, err := finder.FindPatient(ctx, args[0]).Wait(ctx)
			if err != nil {
				return err
			}
			switch format, _ := cmd.Flags().GetString("format"); format {
			case "json":
				j, _ := json.Marshal(map[string]string{
					"patient_id":   args[0],
					"status":       outcome.Status.String(),
					"patient_name": outcome.DisplayName(),
					"detail":       outcome.Detail,
				})
				os.Stdout.Write(append(j, '\n'))
			default:
				fmt.Println(outcome.DisplayName())
			}
			return nil
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringP("format", "f", "text", "output format (text|json)")
	return cmd
}
