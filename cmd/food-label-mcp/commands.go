package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ironsheep/food-label-mcp/internal/imaging"
	"github.com/ironsheep/food-label-mcp/internal/labeler"
	"github.com/ironsheep/food-label-mcp/internal/layout"
	"github.com/ironsheep/food-label-mcp/internal/lexicon"
	"github.com/ironsheep/food-label-mcp/internal/logger"
	"github.com/ironsheep/food-label-mcp/internal/server"
)

// errNoText is returned by reconstruct when no fragment qualifies.
var errNoText = errors.New("no text found")

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the MCP protocol over stdin/stdout (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe(cmd)
		},
	}
}

func (a *app) runServe(cmd *cobra.Command) error {
	log := logger.WithComponent("serve")

	ctx, cancel := signalContext()
	defer cancel()

	p, err := buildPipeline(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := p.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close OCR engine")
		}
	}()

	log.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("commit", GitCommit).
		Msg("Starting food label MCP server")

	srv := server.New(p.svc, server.Options{Version: Version, OCRInfo: p.ocrInfo})
	err = srv.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// photoFlags are shared by commands that read a photo.
type photoFlags struct {
	region    string
	noEnhance bool
	json      bool
}

func (f *photoFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.region, "region", "", "crop to x1,y1,x2,y2 before OCR")
	cmd.Flags().BoolVar(&f.noEnhance, "no-enhance", false, "skip grayscale, contrast, sharpening and upscaling")
	cmd.Flags().BoolVar(&f.json, "json", false, "output as JSON")
}

func (f *photoFlags) options() (labeler.ExtractOptions, error) {
	region, err := parseRegion(f.region)
	if err != nil {
		return labeler.ExtractOptions{}, err
	}
	return labeler.ExtractOptions{Region: region, SkipEnhance: f.noEnhance}, nil
}

// parseRegion parses "x1,y1,x2,y2". Empty means the whole photo.
func parseRegion(s string) (imaging.Region, error) {
	if strings.TrimSpace(s) == "" {
		return imaging.Region{}, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return imaging.Region{}, fmt.Errorf("invalid region %q: want x1,y1,x2,y2", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return imaging.Region{}, fmt.Errorf("invalid region %q: %w", s, err)
		}
		v[i] = n
	}
	return imaging.Region{X1: v[0], Y1: v[1], X2: v[2], Y2: v[3]}, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newExtractCmd(a *app) *cobra.Command {
	var flags photoFlags
	cmd := &cobra.Command{
		Use:   "extract <image>",
		Short: "Print the corrected text of a nutrition label photo",
		Example: `  food-label-mcp extract label.jpg
  food-label-mcp extract label.jpg --region 40,120,640,980 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options()
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			p, err := buildPipeline(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer p.Close()

			ext, err := p.svc.ExtractText(ctx, args[0], opts)
			if errors.Is(err, labeler.ErrUnreadableLabel) {
				return errors.New(labeler.UnreadableMessage)
			}
			if err != nil {
				return err
			}

			if flags.json {
				return writeJSON(cmd.OutOrStdout(), ext)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), ext.Text)
			return err
		},
	}
	flags.register(cmd)
	return cmd
}

func newAnalyzeCmd(a *app) *cobra.Command {
	var flags photoFlags
	cmd := &cobra.Command{
		Use:   "analyze <image>",
		Short: "Read a nutrition label photo and rate it",
		Long: `Read a nutrition label photo and rate it as healthy or unhealthy.

Requires a Hugging Face token (HF_TOKEN or FOODLABEL_ANALYSIS_TOKEN) unless
analysis.base_url points at a server that does not need one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options()
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			p, err := buildPipeline(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer p.Close()

			res := p.svc.AnalyzeLabel(ctx, args[0], opts)
			if flags.json {
				if err := writeJSON(cmd.OutOrStdout(), res); err != nil {
					return err
				}
			} else if res.Success {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n%s\n", res.ExtractedText, res.Analysis)
			}
			if !res.Success {
				return errors.New(res.Error)
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

// readInput reads the named file, or stdin when args is empty or "-".
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return data, nil
}

func newReconstructCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "reconstruct [file]",
		Short: "Rebuild label lines from OCR fragments JSON",
		Long: `Rebuild label lines from an OCR result of the form

  [ [ [[x,y],[x,y],[x,y],[x,y]], ["text", confidence] ], ... ]

read from file or stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			fragments, err := layout.ParseFragmentsJSON(data)
			if err != nil {
				return err
			}

			opts, err := layoutOptions(a.cfg)
			if err != nil {
				return err
			}
			doc := layout.NewReconstructor(opts).Reconstruct(fragments)
			if doc == nil {
				return errNoText
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), doc)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), doc.String())
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output rows and lines as JSON")
	return cmd
}

func newNormalizeCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "normalize [file]",
		Short: "Correct common OCR misreads in label text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			n := lexicon.NewNormalizer(lexiconOptions(a.cfg))
			text := n.Normalize(strings.TrimRight(string(data), "\n"))

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), struct {
					Text         string               `json:"text"`
					Plausibility lexicon.Plausibility `json:"plausibility"`
				}{text, n.Assess(text)})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output text and keyword check as JSON")
	return cmd
}
