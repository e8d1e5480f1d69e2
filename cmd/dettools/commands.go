package main

import (
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/nvr-ai/go-detaug/augment"
	"github.com/nvr-ai/go-detaug/coco"
	"github.com/nvr-ai/go-detaug/config"
	"github.com/nvr-ai/go-detaug/datasets"
	"github.com/nvr-ai/go-detaug/images"
	"github.com/nvr-ai/go-detaug/images/cvio"
	"github.com/nvr-ai/go-detaug/mapper"
	"github.com/nvr-ai/go-detaug/util"
)

func runCityPersons(logger *zap.Logger, imageRoot, gtRoot, out string, fullBox bool) error {
	ds, err := datasets.ConvertCityPersons(imageRoot, gtRoot, datasets.CityPersonsOptions{
		UseFullBox: fullBox,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	logger.Info("writing dataset", zap.String("path", out))
	return ds.Save(out)
}

func runCityscapes(logger *zap.Logger, imageDir, gtDir, out string) error {
	ds, err := datasets.ConvertCityscapes(imageDir, gtDir, logger)
	if err != nil {
		return err
	}
	logger.Info("writing dataset", zap.String("path", out))
	return ds.Save(out)
}

func loadIndex(cfg *config.Config, name string) (*coco.Index, datasets.Entry, error) {
	reg, err := cfg.Registry()
	if err != nil {
		return nil, datasets.Entry{}, err
	}
	ds, entry, err := reg.Load(name)
	if err != nil {
		return nil, datasets.Entry{}, err
	}
	return coco.NewIndex(ds), entry, nil
}

func runResultFormat(logger *zap.Logger, cfg *config.Config, name, outDir string) error {
	idx, entry, err := loadIndex(cfg, name)
	if err != nil {
		return err
	}
	dets, err := idx.ToResultFormat()
	if err != nil {
		return err
	}
	if outDir == "" {
		outDir = filepath.Dir(entry.JSONFile)
	}
	path := filepath.Join(outDir, name+"_in_result_format.json")
	logger.Info("writing result format", zap.String("path", path), zap.Int("detections", len(dets)))
	return coco.WriteJSON(path, dets)
}

func runAppendDets(logger *zap.Logger, cfg *config.Config, name, detsPath string) error {
	idx, _, err := loadIndex(cfg, name)
	if err != nil {
		return err
	}
	dets, err := coco.LoadDetections(detsPath)
	if err != nil {
		return err
	}
	if err := idx.AppendMetadata(dets); err != nil {
		return err
	}
	stem := strings.TrimSuffix(filepath.Base(detsPath), filepath.Ext(detsPath))
	path := filepath.Join(filepath.Dir(detsPath), stem+"_moreInfo.json")
	logger.Info("writing detections", zap.String("path", path), zap.Int("detections", len(dets)))
	return coco.WriteJSON(path, dets)
}

func runPreview(logger *zap.Logger, cfg *config.Config, name string, index int, out string, seed int64) error {
	idx, entry, err := loadIndex(cfg, name)
	if err != nil {
		return err
	}
	recs := mapper.NewRecords(idx, entry.ImagePath)
	if index < 0 || index >= len(recs) {
		return errors.Errorf("record index %d out of range [0, %d)", index, len(recs))
	}

	augs, err := cfg.Augmentations()
	if err != nil {
		return err
	}
	m := &mapper.Mapper{
		Augmentations: augs,
		IsTrain:       cfg.Mapper.IsTrain,
		Reader:        cvio.Reader{},
		Logger:        logger,
	}
	ex, err := m.Map(rand.New(rand.NewSource(seed)), recs[index])
	if err != nil {
		return err
	}
	img, err := mapper.FromTensor(ex.Image)
	if err != nil {
		return err
	}

	rects := make([]images.Rect, 0, len(ex.Instances))
	for _, inst := range ex.Instances {
		logger.Info("instance", zap.Int("category", inst.CategoryID), zap.Stringer("box", inst.Box))
		rects = append(rects, boxRect(inst.Box))
	}
	logger.Info("writing preview", zap.String("path", out),
		zap.Int("transforms", len(ex.Transforms)), zap.Int("instances", len(ex.Instances)))
	return cvio.WriteAnnotated(out, img, rects)
}

func runAugmentDir(logger *zap.Logger, cfg *config.Config, inDir, outDir string, seed int64) error {
	files, err := util.ListImageFiles(inDir)
	if err != nil {
		return err
	}
	augs, err := cfg.Augmentations()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return errors.Wrapf(err, "creating %s", outDir)
	}

	rng := rand.New(rand.NewSource(seed))
	reader := cvio.Reader{}
	for _, f := range files {
		img, err := reader.ReadImage(f.Path)
		if err != nil {
			return err
		}
		in := &augment.Input{Image: img}
		applied := in.Apply(rng, augs...)
		path := filepath.Join(outDir, filepath.Base(f.Path))
		if err := cvio.WriteImage(path, in.Image); err != nil {
			return err
		}
		logger.Debug("augmented", zap.String("path", path), zap.Int("transforms", len(applied)))
	}
	logger.Info("augmented directory", zap.String("input", inDir), zap.Int("images", len(files)))
	return nil
}

func boxRect(b augment.Box) images.Rect {
	return images.Rect{
		X1: int(math32.Round(b.X1)),
		Y1: int(math32.Round(b.Y1)),
		X2: int(math32.Round(b.X2)),
		Y2: int(math32.Round(b.Y2)),
	}
}
