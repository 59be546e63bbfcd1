package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rodaine/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/benaskins/keyward/internal/keychain"
)

func notFound(key string) error {
	return fmt.Errorf("%q: %w", key, keychain.ErrNotFound)
}

func newSetCmd(c *cli) *cobra.Command {
	var command string
	cmd := &cobra.Command{
		Use:   "set <key> [value]",
		Short: "Store a secret",
		Long: "Store a secret. If value is omitted it is taken from the output of --exec, " +
			"a hidden prompt on a terminal, or stdin (useful for piping).",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			var value string
			switch {
			case len(args) == 2 && command != "":
				return errors.New("pass either a value or --exec, not both")
			case len(args) == 2:
				value = args[1]
			case command != "":
				out, err := runValueCommand(cmd.Context(), command)
				if err != nil {
					return fmt.Errorf("value command failed: %w", err)
				}
				value = out
			default:
				v, err := readValue(cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				value = v
			}

			if err := c.store.SetString(key, value, c.opts...); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Secret %q stored\n", key)
			return nil
		},
	}
	cmd.Flags().StringVar(&command, "exec", "", "shell command whose stdout is the value")
	return cmd
}

// readValue prompts without echo on a terminal and reads everything
// otherwise, trimming trailing newlines.
func readValue(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Enter secret value: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(b), nil
	}
	b, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return strings.TrimRight(string(b), "\r\n"), nil
}

func newGetCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print a secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, ok := c.store.Data(args[0], c.opts...)
			if !ok {
				return notFound(args[0])
			}
			w := cmd.OutOrStdout()
			w.Write(data)
			fmt.Fprintln(w)
			return nil
		},
	}
}

func newHasCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "has <key>",
		Short: "Report whether a secret exists",
		Long:  "Print true or false. Exits non-zero when the secret does not exist.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok := c.store.Has(args[0], c.opts...)
			fmt.Fprintln(cmd.OutOrStdout(), ok)
			if !ok {
				return notFound(args[0])
			}
			return nil
		},
	}
}

func newAccessibilityCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "accessibility <key>",
		Short: "Print the accessibility policy a secret was stored with",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, ok := c.store.AccessibilityOf(args[0])
			if !ok {
				if c.store.Has(args[0]) {
					return fmt.Errorf("%q: stored with an unknown accessibility", args[0])
				}
				return notFound(args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), a)
			return nil
		},
	}
}

type listEntry struct {
	Key           string `json:"key"`
	Accessibility string `json:"accessibility,omitempty"`
}

func newListCmd(c *cli) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List all secrets of the service",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := c.store.AllKeys()
			entries := make([]listEntry, 0, len(keys))
			for _, k := range keys {
				e := listEntry{Key: k}
				if a, ok := c.store.AccessibilityOf(k); ok {
					e.Accessibility = a.String()
				}
				entries = append(entries, e)
			}

			w := cmd.OutOrStdout()
			if jsonOut {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			if len(entries) == 0 {
				fmt.Fprintln(w, "No secrets stored")
				return nil
			}
			tbl := table.New("KEY", "ACCESSIBILITY").WithWriter(w)
			for _, e := range entries {
				a := e.Accessibility
				if a == "" {
					a = "unknown"
				}
				tbl.AddRow(e.Key, a)
			}
			tbl.Print()
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	return cmd
}

func newDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <key>",
		Short:   "Remove a secret",
		Aliases: []string{"rm"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.store.Remove(args[0], c.opts...); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Secret %q deleted\n", args[0])
			return nil
		},
	}
}

func newClearCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every secret of the service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := c.store.RemoveAll()
			if errors.Is(err, keychain.ErrNotFound) {
				fmt.Fprintln(cmd.OutOrStdout(), "No secrets stored")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed all secrets of %q\n", c.cfg.ServiceName)
			return nil
		},
	}
}

func newWipeCmd(c *cli) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "wipe",
		Short: "Delete every item in the backend, across all services",
		Long: "Delete every item of every class in the backend, regardless of which " +
			"service or application created it. This cannot be undone.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to wipe without --yes")
			}
			if err := c.store.Wipe(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wiped %s backend\n", c.cfg.Backend)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm wiping the whole backend")
	return cmd
}
