package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lemamita/mamita/internal/menu"
	"github.com/lemamita/mamita/internal/newsletter"
)

func newsletterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "newsletter",
		Short: "Send or preview an outlet newsletter",
	}
	cmd.AddCommand(sendCmd(), previewCmd())
	return cmd
}

func sendCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "send <outlet>",
		Short:     "Format the outlet menu and mail it to every subscriber",
		Args:      cobra.ExactArgs(1),
		ValidArgs: outletArgs(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, args[0], false, "")
		},
	}
}

func previewCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:       "preview <outlet>",
		Short:     "Render the newsletter without sending it",
		Args:      cobra.ExactArgs(1),
		ValidArgs: outletArgs(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, args[0], true, out)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the HTML body to this file")
	return cmd
}

func outletArgs() []string {
	var ids []string
	for _, o := range menu.Outlets() {
		ids = append(ids, o.String())
	}
	return ids
}

func runPipeline(cmd *cobra.Command, raw string, preview bool, out string) error {
	outlet, err := menu.ParseOutlet(raw)
	if err != nil {
		return fmt.Errorf("%w: %q (want one of %v)", err, raw, outletArgs())
	}

	ctx := cmd.Context()
	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	svc, err := a.service(ctx)
	if err != nil {
		return err
	}

	var res *newsletter.Result
	if preview {
		res, err = svc.Preview(ctx, outlet)
	} else {
		res, err = svc.Send(ctx, outlet)
	}
	if err != nil {
		return err
	}

	if out != "" && res.Body != "" {
		if err := os.WriteFile(out, []byte(res.Body), 0o644); err != nil {
			return fmt.Errorf("write preview: %w", err)
		}
	}

	summary := *res
	summary.Body, summary.Text = "", ""
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
