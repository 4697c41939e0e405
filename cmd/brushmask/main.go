package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"runtime"

	"github.com/maskbrush/brush"
	"github.com/maskbrush/brush/imop"
	"github.com/maskbrush/brush/utils"
)

const HelpBanner = `
┌┐ ┬─┐┬ ┬┌─┐┬ ┬┌┬┐┌─┐┌─┐┬┌─
├┴┐├┬┘│ │└─┐├─┤│││├─┤└─┐├┴┐
└─┘┴└─└─┘└─┘┴ ┴┴ ┴┴ ┴└─┘┴ ┴

Raster mask painting from recorded brush events.
    Version: %s

`

// pipeName is the file name that indicates stdin/stdout is being used.
const pipeName = "-"

// Version indicates the current build version.
var Version string

var (
	// Flags
	source      = flag.String("img", "", "Source image sizing the canvas (file, URL or - for stdin)")
	events      = flag.String("events", pipeName, "Event script or directory of scripts")
	destination = flag.String("out", "mask.png", "Mask destination (file, - for stdout or a directory)")
	configFile  = flag.String("config", "", "YAML options file")
	brushSize   = flag.Int("size", brush.MinBrushSize, "Brush diameter in pixels")
	paintColor  = flag.String("color", utils.RGBAToHex(brush.DefaultPaintColor), "Paint colour as #rgb, #rrggbb or #rrggbbaa")
	opacity     = flag.Float64("opacity", brush.DefaultOpacity, "Preview opacity")
	history     = flag.Int("history", brush.DefaultHistoryDepth, "Undo history depth")
	strictSeed  = flag.Bool("strict", false, "Fail on fill seeds outside of the canvas")
	label       = flag.String("label", "", "Shape label")
	shape       = flag.Bool("shape", false, "Write the labelme shape next to the mask")
	preview     = flag.Bool("preview", false, "Write the mask flattened over the image")
	blendMode   = flag.String("blend", imop.Normal.String(), "Preview blend mode")
	fit         = flag.Bool("fit", false, "Fit the preview to the screen size")
	workers     = flag.Int("conc", runtime.NumCPU(), "Number of scripts to process concurrently")
	verbose     = flag.Bool("v", false, "Verbose logging")
)

func main() {
	log.SetFlags(0)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, HelpBanner, Version)
		flag.PrintDefaults()
	}
	flag.Parse()

	if len(*source) == 0 {
		flag.Usage()
		log.Fatal(utils.DecorateText("\nPlease provide the source image with the -img flag!\n", utils.ErrorMessage))
	}
	if *verbose {
		brush.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	opts, err := options()
	if err != nil {
		log.Fatal(utils.DecorateText(fmt.Sprintf("\nInvalid options: %v\n", err), utils.ErrorMessage))
	}
	blend, err := imop.ParseBlend(*blendMode)
	if err != nil {
		log.Fatal(utils.DecorateText(fmt.Sprintf("\n%v\n", err), utils.ErrorMessage))
	}

	op := &brush.Ops{
		Image:    *source,
		Events:   *events,
		Out:      *destination,
		PipeName: pipeName,
		Workers:  *workers,
		Shape:    *shape,
		Preview:  *preview,
		Fit:      *fit,
		Blend:    blend,
		Label:    *label,
	}
	if err := op.Execute(opts); err != nil {
		log.Fatal(utils.DecorateText(fmt.Sprintf("\n%v\n", err), utils.ErrorMessage))
	}
}

// options loads the YAML options file, if any, and overrides its values
// with the flags explicitly set on the command line.
func options() (*brush.Options, error) {
	opts := brush.DefaultOptions()
	if len(*configFile) > 0 {
		f, err := os.Open(*configFile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if opts, err = brush.LoadOptions(f); err != nil {
			return nil, err
		}
	}

	var err error
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "size":
			opts.BrushSize = *brushSize
		case "color":
			c, cerr := utils.HexToRGBA(*paintColor)
			if cerr != nil {
				err = cerr
				return
			}
			opts.Color = c
		case "opacity":
			opts.Opacity = *opacity
		case "history":
			opts.HistoryDepth = *history
		case "strict":
			opts.StrictSeed = *strictSeed
		}
	})
	if err != nil {
		return nil, err
	}
	return opts, opts.Validate()
}
