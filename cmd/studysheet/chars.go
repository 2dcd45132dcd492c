package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/hrygo/studysheet/store"
)

var charsCmd = &cobra.Command{
	Use:   "chars",
	Short: "Inspect and extend the master character list",
}

var charsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the master character list with indices",
	Args:  cobra.NoArgs,
	RunE: withStore(func(ctx context.Context, cmd *cobra.Command, st *store.Store, _ []string) error {
		seq, err := st.ListCharacters(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		chars := seq.Chars()
		const perLine = 10
		for i := 0; i < len(chars); i += perLine {
			end := min(i+perLine, len(chars))
			fmt.Fprintf(out, "%5d  %s\n", i, strings.Join(chars[i:end], " "))
		}
		fmt.Fprintf(out, "%d characters\n", seq.Len())
		return nil
	}),
}

var charsAddCmd = &cobra.Command{
	Use:   "add CHAR",
	Short: "Append one character to the master list",
	Args:  cobra.ExactArgs(1),
	RunE: withStore(func(ctx context.Context, cmd *cobra.Command, st *store.Store, args []string) error {
		index, err := st.AppendCharacter(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added %s at index %d\n", strings.TrimSpace(args[0]), index)
		return nil
	}),
}

var charsImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Append every new Chinese character found in FILE",
	Args:  cobra.ExactArgs(1),
	RunE: withStore(func(ctx context.Context, cmd *cobra.Command, st *store.Store, args []string) error {
		text, err := os.ReadFile(args[0])
		if err != nil {
			return errors.Wrapf(err, "failed to read %s", args[0])
		}
		result, err := st.ImportCharacters(ctx, string(text))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added %d (%s), %d already present, %d skipped\n",
			len(result.Added), strings.Join(result.Added, ""), result.Duplicates, result.Invalid)
		return nil
	}),
}

func init() {
	charsCmd.AddCommand(charsListCmd, charsAddCmd, charsImportCmd)
}

type storeRunE func(ctx context.Context, cmd *cobra.Command, st *store.Store, args []string) error

// withStore opens the configured store around fn.
func withStore(fn storeRunE) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		instanceProfile, err := loadProfile()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		st, err := openStore(ctx, instanceProfile)
		if err != nil {
			return err
		}
		defer st.Close()
		return fn(ctx, cmd, st, args)
	}
}
