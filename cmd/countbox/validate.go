package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/neox5/countbox/internal/config"
	"github.com/neox5/countbox/internal/format"
	"github.com/urfave/cli/v3"
)

func validate(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}
	return printCatalog(os.Stdout, cfg)
}

// printCatalog writes the resolved catalog with each metric's final display.
func printCatalog(w io.Writer, cfg *config.Config) error {
	cat, err := cfg.Catalog()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLABEL\tKIND\tCOLOR\tTARGET\tDISPLAY")
	for _, def := range cat.Definitions() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%v\t%s\n",
			def.ID,
			def.Label,
			def.Kind,
			def.Color.Resolve(),
			def.Target,
			format.Format(def.Target, def))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%d metrics, %s over %d steps, threshold %.2f\n",
		cat.Len(), cfg.Animation.Duration, cfg.Animation.Steps, cfg.Animation.Threshold)
	return nil
}
