// Command galvoplot renders frames of a show offline and saves the trace
// as a PNG, without any DAC.
//
//	galvoplot -set "x:phase:5:90 mode:MODE3" -skip 3 -o trace.png
package main

import (
	"flag"
	"os"

	"github.com/thelolagemann/galvo/internal/projector"
	"github.com/thelolagemann/galvo/pkg/log"
	"github.com/thelolagemann/galvo/pkg/plot"
)

func main() {
	var (
		set    = flag.String("set", "", "control batch to apply before rendering")
		pps    = flag.Int("pps", projector.DefaultSampleRate, "points per second")
		points = flag.Int("points", projector.DefaultFramePoints, "points per frame")
		skip   = flag.Int("skip", 0, "frames to render and discard first")
		out    = flag.String("o", "galvo.png", "output file")
		width  = flag.Int("width", 800, "image width in pixels")
		height = flag.Int("height", 800, "image height in pixels")
		debug  = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	logger := log.New()
	if *debug {
		logger = log.NewDebug()
	}

	p := projector.New(
		projector.WithLogger(logger),
		projector.SampleRate(*pps),
		projector.FramePoints(*points),
	)
	if *set != "" {
		if err := p.Dispatch(*set); err != nil {
			logger.Errorf("galvoplot: %v", err)
		}
	}

	frame := p.NewFrame()
	for i := 0; i <= *skip; i++ {
		p.RenderFrame(frame)
	}
	if n := p.Violations(); n > 0 {
		logger.Infof("galvoplot: %d values were out of range", n)
	}

	f, err := os.Create(*out)
	if err != nil {
		logger.Fatalf("galvoplot: %v", err)
	}
	defer f.Close()
	if err := plot.WritePNG(f, frame, *set, *width, *height); err != nil {
		logger.Fatalf("galvoplot: %v", err)
	}
	logger.Infof("galvoplot: wrote %s", *out)
}
