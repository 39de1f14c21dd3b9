package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/stwalsh4118/minerals/internal/resolver"
	"github.com/stwalsh4118/minerals/internal/services"
	"github.com/stwalsh4118/minerals/internal/viewmodel"
)

// cliSession is the cache key used by one-shot commands.
const cliSession = "cli"

func docketCmd(logLevel *string) *cobra.Command {
	var party string

	cmd := &cobra.Command{
		Use:   "docket",
		Short: "Print the docket view as JSON",
		Long: `Loads the application file, resolves every listed party through the
configured party source and prints the docket view. Missing party files
show up as placeholders; a missing application or malformed data fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*logLevel)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			a, err := newApp(cmd.Context(), cfg, newLogger(cfg, cmd.ErrOrStderr()), nil)
			if err != nil {
				return err
			}
			defer a.Close()

			return runDocket(cmd.Context(), a, party, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&party, "party", "", "Print only this party's detail")
	return cmd
}

func runDocket(ctx context.Context, a *app, party string, out io.Writer) error {
	if party != "" {
		detail, err := a.docket.GetParty(ctx, cliSession, party)
		if err != nil {
			return err
		}
		return writeJSON(out, detail)
	}

	view, err := a.docket.GetDocket(ctx, cliSession)
	if err != nil {
		return err
	}
	return writeJSON(out, view)
}

func partiesCmd(logLevel *string) *cobra.Command {
	return &cobra.Command{
		Use:   "parties",
		Short: "List the parties the configured source holds",
		Long: `Prints every party name the configured party source can resolve,
sorted. Application parties missing from this list render as
placeholders on the docket.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*logLevel)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			a, err := newApp(cmd.Context(), cfg, newLogger(cfg, cmd.ErrOrStderr()), nil)
			if err != nil {
				return err
			}
			defer a.Close()

			return runParties(cmd.Context(), a, cmd.OutOrStdout())
		},
	}
}

// partyListing is the output of the parties command.
type partyListing struct {
	Source  string   `json:"source"`
	Parties []string `json:"parties"`
}

func runParties(ctx context.Context, a *app, out io.Writer) error {
	lister, ok := a.source.(resolver.NameLister)
	if !ok {
		return fmt.Errorf("party source %q cannot list its parties", a.cfg.Data.PartySource)
	}

	names, err := lister.Names(ctx)
	if err != nil {
		return err
	}
	return writeJSON(out, partyListing{Source: a.cfg.Data.PartySource, Parties: names})
}

func titleChainCmd(logLevel *string) *cobra.Command {
	var summary bool

	cmd := &cobra.Command{
		Use:   "title-chain [file]",
		Short: "Summarize a parcel data file",
		Long: `Decodes a parcel summary upload (a JSON array of rows, or an object with
a "parcels" array) and prints the title-chain view. Without a file the
example dataset is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*logLevel)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			// Title-chain data is standalone; no docket data or party
			// source is opened.
			svc := services.NewTitleChainService(cfg.Server.MaxUploadBytes, newLogger(cfg, cmd.ErrOrStderr()), nil)

			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runTitleChain(svc, path, summary, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&summary, "summary", false, "Print only the summary metrics as text")
	return cmd
}

func runTitleChain(svc services.TitleChainService, path string, summary bool, out io.Writer) error {
	var view *viewmodel.TitleChainView

	if path == "" {
		example := svc.Example("")
		view = &example
	} else {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()

		view, err = svc.Analyze(f, "")
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}

	if !summary {
		return writeJSON(out, view)
	}

	if view.Empty {
		_, err := fmt.Fprintln(out, view.Warning)
		return err
	}
	for _, metric := range view.Metrics {
		if _, err := fmt.Fprintf(out, "%s: %s\n", metric.Label, metric.Value); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
