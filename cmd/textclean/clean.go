package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ironsheep/textclean/internal/cleanup"
	"github.com/ironsheep/textclean/internal/detection"
	"github.com/ironsheep/textclean/internal/imaging"
	"github.com/ironsheep/textclean/internal/mask"
	"github.com/ironsheep/textclean/internal/ocr"
	"github.com/ironsheep/textclean/internal/page"
)

var (
	okStyle     = color.New(color.FgHiGreen)
	skipStyle   = color.New(color.FgHiYellow)
	failStyle   = color.New(color.FgHiRed)
	headerStyle = color.New(color.Bold, color.FgHiWhite)
)

type cleanFlags struct {
	image       string
	out         string
	regions     []string
	regionsFile string
	detections  string
	kind        string
	strategy    string
}

func newCleanCmd(a *app) *cobra.Command {
	f := &cleanFlags{}
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove lettering from regions of a page",
		Example: `  textclean clean -i page.png -o clean.png -r 120,80,300,140
  textclean clean -i page.png -o clean.png --regions-file bubbles.json
  textclean clean -i page.png -o clean.png -r 40,40,200,30 --kind text --detections words.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runClean(cmd, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.image, "image", "i", "", "Page image to clean")
	fl.StringVarP(&f.out, "out", "o", "", "Where to write the cleaned page (PNG, or JPEG for .jpg)")
	fl.StringArrayVarP(&f.regions, "region", "r", nil, "Region as left,top,width,height (repeatable)")
	fl.StringVar(&f.regionsFile, "regions-file", "", "JSON file with a list of regions")
	fl.StringVar(&f.detections, "detections", "", "JSON file with OCR words for a single --region")
	fl.StringVar(&f.kind, "kind", "bubble", "Kind of --region crops (bubble or text)")
	fl.StringVar(&f.strategy, "strategy", "", "Mask strategy (auto, blocks or polygon); overrides the config")
	_ = cmd.MarkFlagRequired("image")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func (a *app) runClean(cmd *cobra.Command, f *cleanFlags) error {
	pg, err := imaging.NewImageCache().Load(f.image)
	if err != nil {
		return err
	}

	regions, err := f.buildRegions()
	if err != nil {
		return err
	}
	if len(regions) == 0 {
		regions = []page.Region{{Coords: detection.CoordsFromRect(pg.Bounds())}}
	}

	opts := a.cfg.PipelineOptions()
	if f.strategy != "" {
		if opts.Strategy, err = mask.ParseStrategy(f.strategy); err != nil {
			return err
		}
	}
	cleaner := page.NewCleaner(cleanup.NewPipeline(opts, a.log), ocr.NewEngine(a.cfg.OCR), a.log)

	start := time.Now()
	res, err := cleaner.Clean(cmd.Context(), pg, regions, nil)
	if err != nil {
		return err
	}
	if err := imaging.Save(f.out, res.Page); err != nil {
		return err
	}

	printReport(cmd.OutOrStdout(), res, f.out, time.Since(start))
	return nil
}

func (f *cleanFlags) buildRegions() ([]page.Region, error) {
	var regions []page.Region

	if f.regionsFile != "" {
		if err := readJSON(f.regionsFile, &regions); err != nil {
			return nil, err
		}
	}

	kind, err := cleanup.ParseCropKind(f.kind)
	if err != nil {
		return nil, err
	}
	for _, s := range f.regions {
		c, err := parseRegion(s)
		if err != nil {
			return nil, err
		}
		regions = append(regions, page.Region{Coords: c, Kind: kind})
	}

	if f.detections != "" {
		if len(f.regions) != 1 {
			return nil, errors.New("--detections needs exactly one --region")
		}
		var dets []detection.Detection
		if err := readJSON(f.detections, &dets); err != nil {
			return nil, err
		}
		if dets == nil {
			dets = []detection.Detection{}
		}
		regions[len(regions)-1].Detections = dets
	}
	return regions, nil
}

// parseRegion parses "left,top,width,height".
func parseRegion(s string) (detection.Coords, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return detection.Coords{}, fmt.Errorf("region %q: want left,top,width,height", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return detection.Coords{}, fmt.Errorf("region %q: %w", s, err)
		}
		v[i] = n
	}
	if v[2] <= 0 || v[3] <= 0 {
		return detection.Coords{}, fmt.Errorf("region %q: width and height must be positive", s)
	}
	return detection.Coords{Left: v[0], Top: v[1], Width: v[2], Height: v[3]}, nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func printReport(w io.Writer, res *page.Result, out string, elapsed time.Duration) {
	headerStyle.Fprintf(w, "Cleaned %s in %s\n", out, elapsed.Round(time.Millisecond))

	for i, cr := range res.Crops {
		c := cr.Coords
		where := fmt.Sprintf("%4d,%-4d %4dx%-4d", c.Left, c.Top, c.Width, c.Height)
		switch {
		case cr.Fill != cleanup.FillNone:
			okStyle.Fprintf(w, "  %-8s", cr.Fill)
			fmt.Fprintf(w, " %s  %s %s\n", where, cr.CropID, imaging.DescribeColor(cr.FillColor).Hex)
		case res.Errors[i] != nil:
			failStyle.Fprintf(w, "  %-8s", "failed")
			fmt.Fprintf(w, " %s  %v\n", where, res.Errors[i])
		default:
			skipStyle.Fprintf(w, "  %-8s", "skipped")
			fmt.Fprintf(w, " %s  %s\n", where, cr.CropID)
		}
	}
	for _, c := range res.Dropped {
		skipStyle.Fprintf(w, "  %-8s", "dropped")
		fmt.Fprintf(w, " %4d,%-4d %4dx%-4d  encloses another region\n", c.Left, c.Top, c.Width, c.Height)
	}

	fmt.Fprintln(w, res.Summarize())
}
