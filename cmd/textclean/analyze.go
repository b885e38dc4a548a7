package main

import (
	"fmt"
	"image/color"
	"io"

	fcolor "github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ironsheep/textclean/internal/cleanup"
	"github.com/ironsheep/textclean/internal/detection"
	"github.com/ironsheep/textclean/internal/imaging"
)

type analyzeFlags struct {
	image  string
	region string
	count  int
}

func newAnalyzeCmd(a *app) *cobra.Command {
	f := &analyzeFlags{}
	cmd := &cobra.Command{
		Use:     "analyze",
		Short:   "Show the colors and lettering block of a region",
		Example: `  textclean analyze -i page.png -r 120,80,300,140`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runAnalyze(cmd.OutOrStdout(), f)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.image, "image", "i", "", "Page image to analyze")
	fl.StringVarP(&f.region, "region", "r", "", "Region as left,top,width,height (default whole page)")
	fl.IntVarP(&f.count, "count", "n", 5, "Number of exact colors to list")
	_ = cmd.MarkFlagRequired("image")
	return cmd
}

func (a *app) runAnalyze(w io.Writer, f *analyzeFlags) error {
	pg, err := imaging.NewImageCache().Load(f.image)
	if err != nil {
		return err
	}

	coords := detection.CoordsFromRect(pg.Bounds())
	if f.region != "" {
		if coords, err = parseRegion(f.region); err != nil {
			return err
		}
	}
	buf, err := imaging.CropRegion(pg, coords.Rect())
	if err != nil {
		return err
	}

	opts := a.cfg.PipelineOptions()
	loc := imaging.LocateText(buf, opts.Binarize)
	dom := imaging.DominantColor(buf, nil)
	hist := imaging.AnalyzeMaskedColors(buf, nil)
	coarse := cleanup.NewClassifier(opts.Classify).Coarse(buf, nil)

	headerStyle.Fprintf(w, "Region %d,%d %dx%d\n", coords.Left, coords.Top, coords.Width, coords.Height)

	polarity := "light"
	if loc.Analysis.DarkBackground {
		polarity = "dark"
	}
	fmt.Fprintf(w, "  Otsu threshold  %d (%s background)\n", loc.Analysis.Threshold, polarity)
	fmt.Fprintf(w, "  Background      %s at %v\n", swatch(loc.Analysis.Background), loc.Analysis.BackgroundPosition)
	fmt.Fprintf(w, "  Text            %s at %v\n", swatch(loc.Analysis.Text), loc.Analysis.TextPosition)
	if loc.Found {
		fmt.Fprintf(w, "  Lettering block %v\n", loc.Bounds)
	} else {
		skipStyle.Fprintln(w, "  Lettering block not found")
	}

	fmt.Fprintf(w, "  Dominant        %s %.1f%% of %d buckets", swatch(dom.Color), dom.Percentage, dom.UniqueColors)
	if coarse.IsSolidBackground {
		okStyle.Fprint(w, "  flat")
	}
	fmt.Fprintln(w)

	n := f.count
	if n > len(hist.Colors) {
		n = len(hist.Colors)
	}
	if n < 0 {
		n = 0
	}
	fmt.Fprintf(w, "  Top %d of %d exact colors\n", n, hist.UniqueColors)
	for _, c := range hist.Colors[:n] {
		fmt.Fprintf(w, "    %s %6d px\n", swatch(c.Color), c.Count)
	}
	return nil
}

// swatch renders a color block followed by its hex code.
func swatch(c color.RGBA) string {
	block := fcolor.BgRGB(int(c.R), int(c.G), int(c.B)).Sprint("  ")
	return block + " " + imaging.DescribeColor(c).Hex
}
