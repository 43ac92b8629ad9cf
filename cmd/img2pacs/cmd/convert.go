package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/jpfielding/img2pacs/pkg/convert"
	"github.com/spf13/cobra"
)

// NewConvertCmd converts one image and sends it to the archive
func NewConvertCmd(ctx context.Context, a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <image>",
		Short: "convert an image to DICOM and send it to the archive",
		Long: "Wraps a grayscale image in a Secondary Capture object written next to it with a .dcm suffix, " +
			"then stores it on the archive. Without --patient-name the name is resolved from the archive.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			patientID, _ := flags.GetString("patient-id")
			patientName, _ := flags.GetString("patient-name")
			description, _ := flags.GetString("study-description")
			accession, _ := flags.GetString("accession-number")
			studyID, _ := flags.GetString("study-id")

			identity := convert.PatientIdentity{PatientID: patientID, PatientName: patientName}
			if patientName == "" && patientID != "" {
				finder, err := a.patientFinder(ctx)
				if err != nil {
					return err
				}
				session := convert.NewSession(finder, a.log)
				defer session.Close()
				if _, err := session.SetPatientID(ctx, patientID).Wait(ctx); err != nil {
					return err
				}
				identity = session.Identity()
				fmt.Println("Patient Name:", identity.PatientName)
			}

			report := a.orchestrator().Convert(ctx, convert.Request{
				ImagePath:       args[0],
				PatientIdentity: identity,
				StudyContext: convert.StudyContext{
					StudyDescription: description,
					AccessionNumber:  accession,
					StudyID:          studyID,
				},
			})
			fmt.Println(report.Message)
			if !report.OK {
				return errors.New(report.Message)
			}
			return nil
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringP("patient-id", "i", "", "patient ID")
	pf.StringP("patient-name", "n", "", "patient name, resolved from the archive when empty")
	pf.StringP("study-description", "d", "", "study description")
	pf.StringP("accession-number", "a", "", "accession number")
	pf.StringP("study-id", "s", "", "study ID")
	return cmd
}
