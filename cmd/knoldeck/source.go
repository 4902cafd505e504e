package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Manage markdown card sources",
}

var sourceAddCmd = &cobra.Command{
	Use:   "add <directory-or-git-url>",
	Short: "Register a local directory or git repository of markdown cards",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		src, err := a.Sync.AddSource(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Added %s source %s as sources/%s\n", src.Kind, src.Location, src.Name)
		return nil
	},
}

var sourceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		sources, err := a.Sync.ListSources(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tKIND\tNAME\tLOCATION\tLAST SYNCED")
		for _, s := range sources {
			last := "never"
			if s.LastSynced != nil {
				last = s.LastSynced.Local().Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", s.ID, s.Kind, s.Name, s.Location, last)
		}
		return w.Flush()
	},
}

var sourceSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull and reconcile every registered source",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		results, err := a.Sync.SyncAll(cmd.Context())
		if err != nil {
			return err
		}
		for _, r := range results {
			fmt.Printf("%s: %d files, +%d -%d cells, %d files removed\n",
				r.Source, r.Files, r.Added, r.Removed, r.DeletedFiles)
			for _, perr := range r.ParseErrors {
				fmt.Printf("  %v\n", perr)
			}
		}
		return nil
	},
}
