// Package subpic extracts rectangular sub-pictures from a composite image,
// such as several photographs scanned together on one page.
//
// An Extractor chains the stages of the imaging and detection packages:
// edge detection, morphological shaping, external boundary tracing, polygon
// simplification with a rectangle filter, and bounding-box cropping. Each run
// owns an imaging.Arena that is released when the run ends.
//
// Basic use:
//
//	ex := subpic.NewExtractor(subpic.DefaultConfig(), logger)
//	res, err := ex.ExtractFile("scan.jpg")
//	if errors.Is(err, subpic.ErrNoContoursFound) {
//		// nothing that looks like a picture
//	}
//	_, err = res.Save(storage.NewLocalStore(logger), storage.Options{
//		Directory: "out", FileName: "pic", Format: storage.FormatJPG,
//	})
//
// Building with -tags gocv runs the edge, shaping and tracing stages with
// OpenCV instead of the pure Go implementation.
package subpic
