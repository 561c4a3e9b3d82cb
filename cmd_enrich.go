package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"seo_enricher/apiclient"
	"seo_enricher/dataset"
	"seo_enricher/flow"
)

func enrichCmd() *cobra.Command {
	var (
		in       string
		out      string
		endpoint string
	)
	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Enrich a local CSV through a running endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(in)
			if err != nil {
				return err
			}
			ctrl, err := flow.New(apiclient.New(endpoint), logger.Named("flow"))
			if err != nil {
				return err
			}
			ctrl.SelectFile(filepath.Base(in), data)
			if err := ctrl.Generate(cmd.Context()); err != nil {
				logger.Debug("generate failed", zap.Error(err))
				return errors.New(flow.Message(err))
			}

			state := ctrl.State()
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "File uploaded: %s\n", state.FileName)
			fmt.Fprintf(w, "Rows missing SEO descriptions: %d\n\n", state.MissingCount)
			printPreview(w, state.Preview)

			art, _ := ctrl.Download()
			if out == "" {
				out = art.Name
			}
			if err := os.WriteFile(out, art.Data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(w, "\nWrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "CSV file with email and seo columns")
	cmd.Flags().StringVar(&out, "out", "", "output path (default "+flow.DownloadName+")")
	cmd.Flags().StringVar(&endpoint, "endpoint", "http://localhost:8080", "base URL of the enrichment server")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func printPreview(w io.Writer, rows []dataset.Row) {
	if len(rows) == 0 {
		return
	}
	fmt.Fprintf(w, "Preview (First %d Results)\n", dataset.PreviewSize)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Email\tSEO Description")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", r[dataset.EmailColumn], r[dataset.SEOColumn])
	}
	_ = tw.Flush()
}
