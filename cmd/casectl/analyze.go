package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	domain "github.com/bryanwahyu/medcase/internal/domain/cases"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [flags]",
	Short: "Run one analysis from local files and print the stored case",
	Example: `  casectl analyze --text "55yo, chest pain" --table labs.csv --image cxr.png
  casectl analyze --document notes.txt`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sub, err := submissionFromFlags(cmd)
		if err != nil {
			return err
		}
		app, err := openApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		rec, err := app.Service.Analyze(cmd.Context(), sub)
		if err != nil {
			return fmt.Errorf("%s: %w", domain.KindOf(err), err)
		}
		return printJSON(cmd.OutOrStdout(), rec)
	},
}

func init() {
	analyzeCmd.Flags().StringP("text", "t", "", "free-text case narrative")
	analyzeCmd.Flags().StringP("document", "d", "", "narrative document (.txt, .md, .rtf)")
	analyzeCmd.Flags().StringSlice("table", nil, "lab file (.pdf, .csv, .tsv, .txt), repeatable")
	analyzeCmd.Flags().StringSlice("image", nil, "X-ray image, repeatable")
	rootCmd.AddCommand(analyzeCmd)
}

func submissionFromFlags(cmd *cobra.Command) (domain.Submission, error) {
	var (
		sub domain.Submission
		err error
	)
	sub.Text, _ = cmd.Flags().GetString("text")
	if p, _ := cmd.Flags().GetString("document"); p != "" {
		ref, err := localFile(p)
		if err != nil {
			return sub, err
		}
		sub.Document = &ref
	}
	tables, _ := cmd.Flags().GetStringSlice("table")
	if sub.Tables, err = localFiles(tables); err != nil {
		return sub, err
	}
	images, _ := cmd.Flags().GetStringSlice("image")
	if sub.Images, err = localFiles(images); err != nil {
		return sub, err
	}
	return sub, nil
}

func localFiles(paths []string) ([]domain.FileRef, error) {
	out := make([]domain.FileRef, 0, len(paths))
	for _, p := range paths {
		ref, err := localFile(p)
		if err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, nil
}

// localFile stats p now and opens it only when the service reads it.
func localFile(p string) (domain.FileRef, error) {
	st, err := os.Stat(p)
	if err != nil {
		return domain.FileRef{}, err
	}
	if st.IsDir() {
		return domain.FileRef{}, fmt.Errorf("%s is a directory", p)
	}
	return domain.FileRef{
		Name: filepath.Base(p),
		Size: st.Size(),
		Open: func() (io.ReadCloser, error) { return os.Open(p) },
	}, nil
}
