package main

import (
	"bytes"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/hrygo/studysheet/internal/profile"
	"github.com/hrygo/studysheet/internal/random"
	"github.com/hrygo/studysheet/server/service/mathgen"
	"github.com/hrygo/studysheet/server/service/render"
	"github.com/hrygo/studysheet/server/service/review"
	"github.com/hrygo/studysheet/store"
)

var (
	shuffleFlag bool
	seedFlag    uint64
	verboseFlag bool
	outputFlag  string

	difficultyFlag string
	countFlag      int
	titleFlag      string
)

var selectCmd = &cobra.Command{
	Use:   "select NEW [START]",
	Short: "Print the study set for NEW reviewed backward from START",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sel, err := selectFromArgs(cmd, args)
		if err != nil {
			return err
		}
		seq := sel.seq
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "characters: %s\n", strings.Join(sel.Characters, ""))
		fmt.Fprintf(out, "filename:   %s\n", sheetFileName(sel.label))
		if verboseFlag {
			fmt.Fprintf(out, "new indices: %v\n", sel.NewIndices)
			if sel.StartIndex >= 0 {
				fmt.Fprintf(out, "start index: %d (%s)\n", sel.StartIndex, seq.At(sel.StartIndex))
				fmt.Fprintf(out, "old indices: %v\n", sel.OldIndices)
				fmt.Fprintf(out, "next index:  %d (%s)\n", sel.NextIndex, seq.At(sel.NextIndex))
			}
		}
		return nil
	},
}

var sheetCmd = &cobra.Command{
	Use:   "sheet NEW [START]",
	Short: "Render the study set for NEW as a PDF grid",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sel, err := selectFromArgs(cmd, args)
		if err != nil {
			return err
		}
		renderer := render.NewRenderer(sel.profile.FontPaths)
		var buf bytes.Buffer
		if err := renderer.RenderCharacters(&buf, sel.Characters); err != nil {
			return err
		}
		path := outputFlag
		if path == "" {
			path = sheetFileName(sel.label)
		}
		if err := writeFileAtomic(path, &buf); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	},
}

var worksheetCmd = &cobra.Command{
	Use:   "worksheet",
	Short: "Render an exponent-rule worksheet with its answer key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		instanceProfile, err := loadProfile()
		if err != nil {
			return err
		}
		difficulty, err := mathgen.ParseDifficulty(difficultyFlag)
		if err != nil {
			return err
		}
		rng, err := newRand()
		if err != nil {
			return err
		}
		problems, err := mathgen.NewGenerator(rng).GenerateSet(difficulty, countFlag)
		if err != nil {
			return err
		}

		title := titleFlag
		if title == "" {
			title = fmt.Sprintf("Exponent Rules (%s)", difficulty)
		}
		var buf bytes.Buffer
		if err := render.NewRenderer(instanceProfile.FontPaths).RenderWorksheet(&buf, title, problems); err != nil {
			return err
		}
		path := outputFlag
		if path == "" {
			path = fmt.Sprintf("worksheet-%s-%s.pdf", difficulty, shortuuid.New())
		}
		if err := writeFileAtomic(path, &buf); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d problems)\n", path, len(problems))
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{selectCmd, sheetCmd} {
		cmd.Flags().BoolVar(&shuffleFlag, "shuffle", false, "shuffle the study set")
		cmd.Flags().Uint64Var(&seedFlag, "seed", 0, "seed for --shuffle (0 picks a random seed)")
	}
	selectCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "print resolved indices")
	sheetCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "output file (default: the sheet label)")

	worksheetCmd.Flags().StringVar(&difficultyFlag, "difficulty", string(mathgen.Easy), "easy, medium or hard")
	worksheetCmd.Flags().IntVar(&countFlag, "count", 12, fmt.Sprintf("number of problems (1-%d)", mathgen.MaxProblems))
	worksheetCmd.Flags().StringVar(&titleFlag, "title", "", "worksheet title")
	worksheetCmd.Flags().Uint64Var(&seedFlag, "seed", 0, "seed for problem generation (0 picks a random seed)")
	worksheetCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "output file")
}

type cliSelection struct {
	*review.Selection
	profile *profile.Profile
	label   string
	seq     *store.CharacterSequence
}

// selectFromArgs loads the master sequence and runs the selection for NEW [START].
func selectFromArgs(cmd *cobra.Command, args []string) (*cliSelection, error) {
	instanceProfile, err := loadProfile()
	if err != nil {
		return nil, err
	}

	ctx := cmd.Context()
	st, err := openStore(ctx, instanceProfile)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	seq, err := st.ListCharacters(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load character list")
	}

	newChars := store.SplitCharacters(args[0])
	var startChar string
	if len(args) > 1 {
		startChar = strings.Join(store.SplitCharacters(args[1]), "")
	}
	sel, err := review.SelectDetailed(newChars, startChar, seq)
	if err != nil {
		return nil, err
	}
	if shuffleFlag {
		rng, err := newRand()
		if err != nil {
			return nil, err
		}
		sel.Characters = review.Shuffle(sel.Characters, rng)
	}
	return &cliSelection{
		Selection: sel,
		profile:   instanceProfile,
		label:     review.Compose(newChars, startChar, seq),
		seq:       seq,
	}, nil
}

func newRand() (*rand.Rand, error) {
	if seedFlag != 0 {
		return random.New(seedFlag), nil
	}
	return random.NewRand()
}

// sheetFileName turns a sheet label into a file name in the working directory.
// Path separators in the label are replaced so the name cannot escape it.
func sheetFileName(label string) string {
	name := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == filepath.Separator {
			return '_'
		}
		return r
	}, label)
	name = filepath.Base(name + ".pdf")
	if name == ".pdf" {
		return "study-sheet.pdf"
	}
	return name
}

// writeFileAtomic writes r to a temporary file next to path and renames it into place.
func writeFileAtomic(path string, r io.Reader) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".studysheet-*")
	if err != nil {
		return errors.Wrap(err, "failed to create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "failed to write %s", path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "failed to close %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "failed to rename into %s", path)
	}
	return nil
}
