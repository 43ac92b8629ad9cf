package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// NewSendCmd stores existing DICOM files on the archive
func NewSendCmd(ctx context.Context, a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send <file.dcm>...",
		Short: "send DICOM files to the archive",
		Long:  "Runs the store tool for each file and prints the outcome.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			storer := a.objectStorer()
			var errs []error
			for _, path := range args {
				outcome, err := storer.Store(ctx, path).Wait(ctx)
				if err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", path, err))
					continue
				}
				a.metrics.Transmission(outcome.Sent)
				fmt.Printf("%s: %s\n", path, outcome.Message())
				if !outcome.Sent {
					errs = append(errs, fmt.Errorf("%s: %s", path, outcome.Message()))
				}
			}
			return errors.Join(errs...)
		},
	}
	return cmd
}
