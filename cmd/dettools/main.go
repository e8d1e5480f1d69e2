package main

import (
	"fmt"
	"os"

	"github.com/akamensky/argparse"
	"go.uber.org/zap"

	"github.com/nvr-ai/go-detaug/config"
	"github.com/nvr-ai/go-detaug/util"
)

func main() {
	parser := argparse.NewParser("dettools", "Pedestrian detection dataset conversion and augmentation tools")
	logMode := parser.String("", "log", &argparse.Options{Help: "Log mode for commands without a config file (release or debug)", Default: "debug"})

	cityPersons := parser.NewCommand("citypersons", "Convert CityPersons box annotations to COCO")
	cpImages := cityPersons.String("i", "images", &argparse.Options{Help: "Root of the leftImg8bit images", Required: true})
	cpGT := cityPersons.String("g", "gt", &argparse.Options{Help: "Root of the gtBboxCityPersons annotations", Required: true})
	cpOut := cityPersons.String("o", "output", &argparse.Options{Help: "Output COCO json file", Required: true})
	cpFullBox := cityPersons.Flag("", "full-box", &argparse.Options{Help: "Use the full box instead of the visible box", Default: false})

	cityscapes := parser.NewCommand("cityscapes", "Convert Cityscapes fine polygons to COCO")
	csImages := cityscapes.String("i", "images", &argparse.Options{Help: "leftImg8bit directory of one split", Required: true})
	csGT := cityscapes.String("g", "gt", &argparse.Options{Help: "gtFine directory of the same split", Required: true})
	csOut := cityscapes.String("o", "output", &argparse.Options{Help: "Output COCO json file", Required: true})

	resultFormat := parser.NewCommand("result-format", "Write the ground truth of a dataset as a flat detection list")
	rfConfig := resultFormat.String("c", "config", &argparse.Options{Help: "Config file", Default: "config.yaml"})
	rfDataset := resultFormat.String("d", "dataset", &argparse.Options{Help: "Registered dataset name", Required: true})
	rfOut := resultFormat.String("o", "outdir", &argparse.Options{Help: "Output directory (default: next to the dataset json)", Default: ""})

	appendDets := parser.NewCommand("append-dets", "Attach image and category records to detections")
	adConfig := appendDets.String("c", "config", &argparse.Options{Help: "Config file", Default: "config.yaml"})
	adDataset := appendDets.String("d", "dataset", &argparse.Options{Help: "Registered dataset name", Required: true})
	adDets := appendDets.String("t", "detections", &argparse.Options{Help: "Detections json file", Required: true})

	preview := parser.NewCommand("preview", "Map one dataset record and write the augmented image with its boxes")
	pvConfig := preview.String("c", "config", &argparse.Options{Help: "Config file", Default: "config.yaml"})
	pvDataset := preview.String("d", "dataset", &argparse.Options{Help: "Registered dataset name", Required: true})
	pvIndex := preview.Int("n", "index", &argparse.Options{Help: "Record index within the dataset", Default: 0})
	pvOut := preview.String("o", "output", &argparse.Options{Help: "Output image file", Required: true})
	pvSeed := preview.Int("", "seed", &argparse.Options{Help: "Random seed (default: from config)", Default: -1})

	augmentDir := parser.NewCommand("augment-dir", "Apply the configured augmentations to every image in a directory")
	agConfig := augmentDir.String("c", "config", &argparse.Options{Help: "Config file", Default: "config.yaml"})
	agInput := augmentDir.String("i", "input", &argparse.Options{Help: "Input image directory", Required: true})
	agOutput := augmentDir.String("o", "output", &argparse.Options{Help: "Output image directory", Required: true})
	agSeed := augmentDir.Int("", "seed", &argparse.Options{Help: "Random seed (default: from config)", Default: -1})

	err := parser.Parse(os.Args)
	if err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	var cfg *config.Config
	mode := *logMode
	for _, c := range []struct {
		happened bool
		path     string
	}{
		{resultFormat.Happened(), *rfConfig},
		{appendDets.Happened(), *adConfig},
		{preview.Happened(), *pvConfig},
		{augmentDir.Happened(), *agConfig},
	} {
		if !c.happened {
			continue
		}
		cfg, err = config.Load(c.path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		mode = cfg.Log.Mode
	}

	logger, err := util.NewLogger(mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	switch {
	case cityPersons.Happened():
		err = runCityPersons(logger, *cpImages, *cpGT, *cpOut, *cpFullBox)
	case cityscapes.Happened():
		err = runCityscapes(logger, *csImages, *csGT, *csOut)
	case resultFormat.Happened():
		err = runResultFormat(logger, cfg, *rfDataset, *rfOut)
	case appendDets.Happened():
		err = runAppendDets(logger, cfg, *adDataset, *adDets)
	case preview.Happened():
		err = runPreview(logger, cfg, *pvDataset, *pvIndex, *pvOut, seedFor(cfg, *pvSeed))
	case augmentDir.Happened():
		err = runAugmentDir(logger, cfg, *agInput, *agOutput, seedFor(cfg, *agSeed))
	}
	if err != nil {
		logger.Error("command failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func seedFor(cfg *config.Config, flag int) int64 {
	if flag >= 0 {
		return int64(flag)
	}
	return cfg.Seed
}
