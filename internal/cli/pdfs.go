package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jrsteele09/go-lms-client/api"
	"github.com/jrsteele09/go-lms-client/authz"
	"github.com/jrsteele09/go-lms-client/users"
)

var pdfCourseID int64

var pdfsCmd = &cobra.Command{
	Use:   "pdfs",
	Short: "Browse and manage course documents",
}

var pdfsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a course's PDFs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		a, err := newApp()
		if err != nil {
			return err
		}
		a.manager.Bootstrap(ctx)
		if err := requireSession(a.manager.Snapshot(), "", authz.RouteStudentHome); err != nil {
			return err
		}

		pdfs, err := a.client.CoursePDFs(ctx, pdfCourseID)
		if err != nil {
			return err
		}
		if len(pdfs) == 0 {
			fmt.Println("No PDFs found")
			return nil
		}
		for _, pdf := range pdfs {
			fmt.Printf("%4d  %-40s %8d bytes\n", pdf.ID, pdf.OriginalName, pdf.Size)
		}
		return nil
	},
}

var pdfsUploadCmd = &cobra.Command{
	Use:   "upload <file>...",
	Short: "Upload PDFs to a course (admin only)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		a, err := newApp()
		if err != nil {
			return err
		}
		a.manager.Bootstrap(ctx)
		if err := requireSession(a.manager.Snapshot(), users.RoleAdmin, authz.RouteAdminHome); err != nil {
			return err
		}

		uploads := make([]api.Upload, 0, len(args))
		for _, path := range args {
			file, err := os.Open(path)
			if err != nil {
				return errors.Wrapf(err, "open %q", path)
			}
			defer file.Close()
			uploads = append(uploads, api.Upload{Filename: filepath.Base(path), Content: file})
		}

		pdfs, err := a.client.UploadCoursePDFs(ctx, pdfCourseID, uploads, func(pct int) {
			fmt.Printf("\rUploading... %3d%%", pct)
		})
		fmt.Println()
		if err != nil {
			return err
		}
		for _, pdf := range pdfs {
			fmt.Printf("Uploaded %s as %d\n", pdf.OriginalName, pdf.ID)
		}
		return nil
	},
}

var pdfsURLCmd = &cobra.Command{
	Use:   "url <pdf-id>",
	Short: "Fetch a time-limited download link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		pdfID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return errors.Wrap(err, "invalid pdf id")
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		a.manager.Bootstrap(ctx)
		if err := requireSession(a.manager.Snapshot(), "", authz.RouteStudentHome); err != nil {
			return err
		}

		signed, err := a.client.PDFSignedURL(ctx, pdfID)
		if err != nil {
			return err
		}
		fmt.Printf("%s\nexpires %s\n", signed.URL, signed.ExpiresAt.Format("15:04:05 MST"))
		return nil
	},
}

var pdfsRmCmd = &cobra.Command{
	Use:   "rm <pdf-id>",
	Short: "Delete a PDF (admin only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		pdfID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return errors.Wrap(err, "invalid pdf id")
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		a.manager.Bootstrap(ctx)
		if err := requireSession(a.manager.Snapshot(), users.RoleAdmin, authz.RouteAdminHome); err != nil {
			return err
		}

		if err := a.client.DeletePDF(ctx, pdfID); err != nil {
			return err
		}
		fmt.Printf("Deleted PDF %d\n", pdfID)
		return nil
	},
}

func init() {
	pdfsListCmd.Flags().Int64VarP(&pdfCourseID, "course", "c", 0, "Course ID")
	pdfsUploadCmd.Flags().Int64VarP(&pdfCourseID, "course", "c", 0, "Course ID")
	_ = pdfsListCmd.MarkFlagRequired("course")
	_ = pdfsUploadCmd.MarkFlagRequired("course")

	pdfsCmd.AddCommand(pdfsListCmd, pdfsUploadCmd, pdfsURLCmd, pdfsRmCmd)
	rootCmd.AddCommand(pdfsCmd)
}
