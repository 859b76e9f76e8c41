package roadchain

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/liftedinit/roadchain/internal/chain"
	"github.com/liftedinit/roadchain/internal/config"
	"github.com/liftedinit/roadchain/internal/digest"
	"github.com/liftedinit/roadchain/internal/store"
)

var verifyConfig config.VerifyConfig

var verifyCmd = &cobra.Command{
	Use:   "verify [file...]",
	Short: "Verify the integrity of the chain",
	Long: `Verify the configured chain, or each given JSON chain file.
Every block is rehashed and checked against its predecessor. With --sample only
a random subset of blocks is checked.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		verifyConfig = config.LoadVerifyConfigFromCLI()
		if err := verifyConfig.Validate(); err != nil {
			return fmt.Errorf("invalid Verify configuration: %w", err)
		}
		slog.Debug("Command-line arguments", "verifyConfig", verifyConfig)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return verifyFiles(cmd, args)
		}

		l, _, err := openLedger(cmd.Context())
		if err != nil {
			return err
		}
		defer l.Close()

		out := cmd.OutOrStdout()
		if verifyConfig.Sample > 0 {
			res := l.Sample(verifyConfig.Sample, nil)
			printSample(out, res)
			if !res.Valid() {
				return fmt.Errorf("%d sampled blocks failed verification", len(res.Failed))
			}
			return nil
		}

		bar, err := newProgressBar(cmd.ErrOrStderr(), l.Len(), "Verifying blocks...")
		if err != nil {
			return err
		}
		res := l.VerifyFunc(func(int) {
			if bar != nil {
				if err := bar.Add(1); err != nil {
					slog.Warn("Failed to update progress bar", "error", err)
				}
			}
		})
		if bar != nil {
			if err := bar.Finish(); err != nil {
				return fmt.Errorf("failed to finish progress bar: %w", err)
			}
		}

		printResult(out, "chain", l.Len(), res)
		if !res.Valid {
			return errors.WithMessage(res.Err(), "chain verification failed")
		}
		return nil
	},
}

// fileResult is the verification outcome of one chain file.
type fileResult struct {
	blocks int
	result chain.Result
}

// verifyFiles verifies each chain file concurrently. Files that fail to load
// abort the run; files that fail verification are reported at the end.
func verifyFiles(cmd *cobra.Command, paths []string) error {
	d, err := digest.Lookup(viper.GetString("digest"))
	if err != nil {
		return err
	}

	bar, err := newProgressBar(cmd.ErrOrStderr(), len(paths), "Verifying files...")
	if err != nil {
		return err
	}

	results := make([]fileResult, len(paths))
	eg, ctx := errgroup.WithContext(cmd.Context())
	eg.SetLimit(int(verifyConfig.MaxConcurrency))

	for i, path := range paths {
		if ctx.Err() != nil {
			slog.Info("Verification cancelled by user")
			break
		}

		eg.Go(func() error {
			records, err := store.ReadJSONFile(path)
			if err != nil {
				return err
			}
			blocks, err := chain.DecodeAll[json.RawMessage](records)
			if err != nil {
				return fmt.Errorf("failed to decode %s: %w", path, err)
			}

			c := chain.Load(blocks, chain.WithDigest(d))
			results[i] = fileResult{blocks: c.Len(), result: c.Verify()}

			if bar != nil {
				if err := bar.Add(1); err != nil {
					slog.Warn("Failed to update progress bar", "error", err)
				}
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return errors.WithMessage(err, "failed to verify chain files")
	}
	if err := cmd.Context().Err(); err != nil {
		return err
	}
	if bar != nil {
		if err := bar.Finish(); err != nil {
			return fmt.Errorf("failed to finish progress bar: %w", err)
		}
	}

	failed := 0
	for i, r := range results {
		printResult(cmd.OutOrStdout(), paths[i], r.blocks, r.result)
		if !r.result.Valid {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d chain files failed verification", failed, len(paths))
	}
	return nil
}

// newProgressBar returns nil unless --progress is set.
func newProgressBar(w io.Writer, total int, description string) (*progressbar.ProgressBar, error) {
	if !verifyConfig.Progress {
		return nil, nil
	}

	bar := progressbar.NewOptions64(
		int64(total),
		progressbar.OptionSetWriter(w),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	if err := bar.RenderBlank(); err != nil {
		return nil, fmt.Errorf("failed to render progress bar: %w", err)
	}
	return bar, nil
}

func printResult(w io.Writer, name string, blocks int, r chain.Result) {
	if r.Valid {
		fmt.Fprintf(w, "%s: valid (%d blocks)\n", name, blocks)
		return
	}
	fmt.Fprintf(w, "%s: INVALID at block %d: %s\n", name, r.FirstInvalid, r.Reason)
}

func printSample(w io.Writer, r chain.SampleResult) {
	if r.Valid() {
		fmt.Fprintf(w, "Checked %s blocks: valid\n", r.Rate())
		return
	}
	fmt.Fprintf(w, "Checked %s blocks: %d errors at %v\n", r.Rate(), len(r.Failed), r.Failed)
}

func init() {
	verifyCmd.Flags().IntP("sample", "n", 0, "Spot check this many random blocks instead of the whole chain")
	verifyCmd.Flags().Bool("progress", false, "Display a progress bar")
	verifyCmd.Flags().UintP("max-concurrency", "c", 4, "Maximum number of files verified concurrently")

	if err := viper.BindPFlags(verifyCmd.Flags()); err != nil {
		slog.Error("Failed to bind verifyCmd flags", "error", err)
	}
}
