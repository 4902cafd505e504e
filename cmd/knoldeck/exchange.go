package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/conorfennell/knoldeck/internal/app"
	"github.com/conorfennell/knoldeck/internal/domain"
	"github.com/conorfennell/knoldeck/internal/exchange"
	"github.com/conorfennell/knoldeck/internal/knol"
)

var exportCmd = &cobra.Command{
	Use:   "export <path>",
	Short: "Export a file or folder subtree as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		encrypt, _ := cmd.Flags().GetBool("encrypt")

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		id, err := resolvePath(cmd.Context(), a, args[0])
		if err != nil {
			return err
		}
		item, err := a.Exchange.Export(cmd.Context(), id)
		if err != nil {
			return err
		}

		var passphrase string
		if encrypt {
			if passphrase, err = readPassphrase(true); err != nil {
				return err
			}
		}

		var w io.Writer = cmd.OutOrStdout()
		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating %s: %w", output, err)
			}
			defer f.Close()
			w = f
		}
		if err := exchange.Encode(w, item, passphrase); err != nil {
			return err
		}

		files, folders, cells := item.Count()
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %s: %d files, %d folders, %d cells\n", item.Path, files, folders, cells)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import an exported subtree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		into, _ := cmd.Flags().GetString("into")

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}
		item, err := decodeExport(data)
		if err != nil {
			return err
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		dest := domain.RootFolderID
		if into != "" {
			if dest, err = resolvePath(cmd.Context(), a, into); err != nil {
				return err
			}
		}
		id, err := a.Exchange.Import(cmd.Context(), item, dest)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %s (id %d)\n", item.Path, id)
		return nil
	},
}

// decodeExport decodes data, asking for a passphrase only when the document is encrypted.
func decodeExport(data []byte) (exchange.ExportedItem, error) {
	item, err := exchange.Decode(bytes.NewReader(data), "")
	if !errors.Is(err, exchange.ErrPassphraseRequired) {
		return item, err
	}
	passphrase, err := readPassphrase(false)
	if err != nil {
		return exchange.ExportedItem{}, err
	}
	return exchange.Decode(bytes.NewReader(data), passphrase)
}

// resolvePath finds the node at path, preferring a folder when a file shares the path.
func resolvePath(ctx context.Context, a *app.App, path string) (int64, error) {
	path = knol.TrimPath(path)
	nodes, err := a.Files.List(ctx)
	if err != nil {
		return 0, err
	}
	var found *domain.FileNode
	for i, n := range nodes {
		if n.Path != path {
			continue
		}
		if n.IsFolder {
			return n.ID, nil
		}
		found = &nodes[i]
	}
	if found == nil {
		return 0, fmt.Errorf("no file or folder at %q", path)
	}
	return found.ID, nil
}

// readPassphrase takes the passphrase from the configured environment variable, or
// prompts on the terminal. confirm asks twice.
func readPassphrase(confirm bool) (string, error) {
	if cfg.Export.PassphraseEnv != "" {
		if p := os.Getenv(cfg.Export.PassphraseEnv); p != "" {
			return p, nil
		}
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("passphrase required: set %s or run from a terminal", cfg.Export.PassphraseEnv)
	}

	fmt.Fprint(os.Stderr, "Passphrase: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	if len(first) == 0 {
		return "", errors.New("passphrase cannot be empty")
	}
	if !confirm {
		return string(first), nil
	}

	fmt.Fprint(os.Stderr, "Confirm passphrase: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	if string(first) != string(second) {
		return "", errors.New("passphrases do not match")
	}
	return string(first), nil
}
