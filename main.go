package main

import (
	"context"
	"flag"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/thelolagemann/galvo/internal/projector"
	"github.com/thelolagemann/galvo/pkg/console"
	"github.com/thelolagemann/galvo/pkg/dac"
	_ "github.com/thelolagemann/galvo/pkg/dac/etherdream"
	_ "github.com/thelolagemann/galvo/pkg/dac/oto"
	_ "github.com/thelolagemann/galvo/pkg/dac/sdl"
	_ "github.com/thelolagemann/galvo/pkg/dac/virtual"
	"github.com/thelolagemann/galvo/pkg/log"
	"github.com/thelolagemann/galvo/pkg/script"
	"github.com/thelolagemann/galvo/pkg/web"
)

func main() {
	var (
		driverName = flag.String("driver", "virtual", "DAC driver to use, or auto. Installed: "+strings.Join(dac.DriverNames(), ", "))
		dacIndex   = flag.Int("dac", 0, "index of the discovered DAC to stream to")
		discover   = flag.Duration("discover", time.Second, "time to wait for DACs to be discovered")
		pps        = flag.Int("pps", projector.DefaultSampleRate, "points per second")
		points     = flag.Int("points", projector.DefaultFramePoints, "points per frame")
		addr       = flag.String("addr", ":8090", "address of the websocket control server, empty to disable")
		quality    = flag.Int("preview-quality", 5, "brotli quality of preview frames, 0 to 11")
		cacheSize  = flag.Int("preview-cache", 64, "number of preview frames browsers keep cached")
		scriptFile = flag.String("script", "", "Lua show script to run (.lua, .gz, .zip or .7z)")
		useConsole = flag.Bool("console", false, "read control batches from the terminal")
		strict     = flag.Bool("strict", false, "panic on out of range values instead of clamping them")
		set        = flag.String("set", "", "control batch to apply at startup")
		quiet      = flag.Bool("quiet", false, "do not log every control batch")
		debug      = flag.Bool("debug", false, "enable debug logging")
		pprofAddr  = flag.String("pprof", "", "address to serve pprof on")
	)
	dac.RegisterFlags(flag.CommandLine)
	flag.Parse()

	logger := log.New()
	if *debug {
		logger = log.NewDebug()
	}
	controlLogger := logger
	if *quiet {
		controlLogger = log.NewNullLogger()
	}

	if *pprofAddr != "" {
		go func() {
			if err := http.ListenAndServe(*pprofAddr, nil); err != nil {
				logger.Errorf("pprof: %v", err)
			}
		}()
	}

	d := dac.GetDriver(*driverName)
	if d == nil {
		logger.Fatalf("unknown DAC driver %q, installed: %s", *driverName, strings.Join(dac.DriverNames(), ", "))
	}

	opts := []projector.Opt{
		projector.WithLogger(controlLogger),
		projector.SampleRate(*pps),
		projector.FramePoints(*points),
	}
	if *strict {
		opts = append(opts, projector.StrictChecks())
	}
	p := projector.New(opts...)
	if *set != "" {
		if err := p.Dispatch(*set); err != nil {
			logger.Errorf("-set: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := web.NewHub(p,
		web.WithLogger(controlLogger),
		web.Quality(*quality),
		web.CacheSize(*cacheSize),
	)
	go hub.Run(ctx)
	if *addr != "" {
		go func() {
			if err := hub.ListenAndServe(ctx, *addr); err != nil {
				logger.Errorf("web: %v", err)
				stop()
			}
		}()
	}

	// discover DACs
	var (
		handle    dac.Handle
		connected bool
		produced  = make(chan error, 1)
	)
	if err := d.LibStart().Err("lib_start"); err != nil {
		logger.Errorf("%v", err)
	} else {
		time.Sleep(*discover)
		n := d.Count()
		logger.Infof("found %d DACs using %s", n, *driverName)
		switch {
		case n == 0:
			logger.Errorf("no DAC found, serving controls only")
		case *dacIndex < 0 || *dacIndex >= n:
			logger.Errorf("no DAC at index %d, serving controls only", *dacIndex)
		default:
			handle = d.Get(*dacIndex)
			if err := d.Connect(handle).Err("connect"); err != nil {
				logger.Errorf("%v", err)
				break
			}
			connected = true
			logger.Infof("connected to DAC %06x", d.ID(handle))

			producer := projector.NewProducer(p, d, handle, hub.Observe)
			go func() { produced <- producer.Run(ctx) }()
		}
	}

	if *scriptFile != "" {
		go func() {
			runner := script.NewRunner(p, logger)
			if err := runner.RunFile(ctx, *scriptFile); err != nil && ctx.Err() == nil {
				logger.Errorf("%v", err)
			}
		}()
	}

	if *useConsole {
		rw, restore, err := console.Stdio()
		if err != nil {
			logger.Errorf("%v", err)
		} else {
			defer restore()
			go func() {
				if err := console.New(p, rw).Run(); err != nil {
					logger.Errorf("console: %v", err)
				}
				stop()
			}()
		}
	}

	var err error
	select {
	case <-ctx.Done():
		if connected {
			// the producer finishes its frame before Stop
			err = <-produced
		}
	case err = <-produced:
		stop()
	}
	if err != nil {
		logger.Errorf("producer stopped: %v", err)
	}

	if connected {
		if err := d.Stop(handle).Err("stop"); err != nil {
			logger.Errorf("%v", err)
		}
	}
	if n := p.Violations(); n > 0 {
		logger.Infof("%d values were clamped into range", n)
	}
}
