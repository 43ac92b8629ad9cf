package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"io"
	"os"

	"github.com/jpfielding/img2pacs/pkg/dicom"
	"github.com/jpfielding/img2pacs/pkg/raster"
	"github.com/spf13/cobra"
)

// NewInspectCmd dumps a DICOM file written by convert
func NewInspectCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <file.dcm|->",
		Short: "print and check a Secondary Capture file",
		Long:  "Parses a Part 10 file, prints its key attributes or the full dataset and checks the Secondary Capture requirements.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader
			switch args[0] {
			case "-":
				in = os.Stdin
			default:
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open file: %v", err)
				}
				defer f.Close()
				in = f
			}
			ds, err := dicom.Parse(in)
			if err != nil {
				return fmt.Errorf("parse error: %w", err)
			}

			switch format, _ := cmd.Flags().GetString("format"); format {
			case "json": // Dataset is JSON serializable out of the box.
				j, _ := json.Marshal(ds)
				os.Stdout.Write(append(j, '\n'))
			case "text": // Dataset will nicely print the DICOM dataset data out of the box.
				fmt.Println(ds)
			default:
				printSummary(ds)
			}

			if out, _ := cmd.Flags().GetString("png"); out != "" {
				if err := writePNG(ds, out); err != nil {
					return err
				}
				fmt.Printf("Pixel data written to %s\n", out)
			}

			res := dicom.ValidateSecondaryCapture(ds)
			for _, w := range res.Warnings {
				fmt.Println("warning:", w)
			}
			return res.Err()
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringP("format", "f", "summary", "output format (summary|text|json)")
	pf.String("png", "", "write the pixel data to this PNG file")
	return cmd
}

func printSummary(ds *dicom.Dataset) {
	syntax := dicom.GetTransferSyntax(ds)
	fmt.Printf("Total elements: %d\n", len(ds.Elements))
	fmt.Printf("SecondaryCapture: %v\n", dicom.IsSecondaryCapture(ds))
	fmt.Printf("TransferSyntax: %s (%s)\n", syntax, syntax.Name())
	fmt.Printf("Modality: %s\n", dicom.GetModality(ds))
	fmt.Printf("Rows: %d\n", dicom.GetRows(ds))
	fmt.Printf("Columns: %d\n", dicom.GetColumns(ds))
	fmt.Printf("BitsAllocated: %d\n", dicom.GetBitsAllocated(ds))
}

func writePNG(ds *dicom.Dataset, path string) error {
	pix, err := dicom.GetPixelBytes(ds)
	if err != nil {
		return err
	}
	if dicom.GetBitsAllocated(ds) != 8 {
		return fmt.Errorf("only 8-bit pixel data can be exported")
	}
	g := &raster.Gray{Rows: dicom.GetRows(ds), Columns: dicom.GetColumns(ds), Pix: pix}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, g.Image()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
