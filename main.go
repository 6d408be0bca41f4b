package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/mkorolev/joy2crsf/internal/config"
	"github.com/mkorolev/joy2crsf/internal/dispatch"
	"github.com/mkorolev/joy2crsf/internal/hub"
	"github.com/mkorolev/joy2crsf/internal/joystick"
	"github.com/mkorolev/joy2crsf/internal/sampler"
	"github.com/mkorolev/joy2crsf/internal/server"
	"github.com/mkorolev/joy2crsf/internal/sink/crsf"
	"github.com/mkorolev/joy2crsf/internal/tray"
)

// Cross-platform shutdown signals: os.Interrupt covers Ctrl+C on
// Windows, SIGTERM covers service managers on Unix.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

func main() {
	cfg, err := config.Load("joy2crsf", os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		log.Fatalf("configuration error: %v", err)
	}

	// The SDL event pump is thread-affine and the control loop runs on
	// this goroutine, so pin it before opening the device.
	runtime.LockOSThread()

	dev, err := joystick.Open(cfg.Backend, cfg.JoystickID)
	if err != nil {
		log.Fatalf("joystick open failed: %v", err)
	}
	defer dev.Close()

	logMappings(cfg)

	sink := crsf.New(cfg.APIURL)
	log.Printf("connecting to CRSF API server: %s", cfg.APIURL)

	// Manual mode routes channel values from the API instead of the
	// radio link. Refusal here means the server is missing or busy.
	modeCtx, modeCancel := context.WithTimeout(context.Background(), 2*time.Second)
	err = sink.SetMode(modeCtx, "manual")
	modeCancel()
	if err != nil {
		log.Fatalf("failed to set manual mode: %v", err)
	}
	log.Println("manual mode set")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, shutdownSignals...)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	// Dispatch path: background worker by default, inline when
	// concurrency is disabled.
	var (
		disp         dispatch.Dispatcher
		health       hub.HealthSource
		worker       *dispatch.Worker
		workerCancel context.CancelFunc
	)
	if cfg.NoThread {
		inline := dispatch.NewInline(sink)
		disp, health = inline, inline
		log.Println("threaded send disabled, dispatching inline")
	} else {
		worker = dispatch.NewWorker(dispatch.NewQueue(dispatch.DefaultCapacity), sink)
		var workerCtx context.Context
		workerCtx, workerCancel = context.WithCancel(context.Background())
		go worker.Run(workerCtx)
		disp, health = worker, worker
	}

	smp := sampler.New(cfg, dev, disp)

	// Optional status surface.
	var srv *server.Server
	if cfg.StatusAddr != "" {
		h := hub.New()
		go hub.NewBroadcaster(h, smp.Updates(), health).Run(ctx)

		srv = server.New(h, cfg.StatusAddr, statusPage)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("status server error: %v", err)
			}
		}()
	}

	if runtime.GOOS == "windows" {
		go tray.New(statusURL(cfg.StatusAddr), func() { cancel() }).Run(tray.GetIcon())
	} else {
		log.Println("press Ctrl+C to stop")
	}

	// The control loop owns this (locked) thread until cancellation,
	// then enqueues the final neutral snapshot and returns.
	smp.Run(ctx)

	// Let the worker drain the neutral frame before exiting so the
	// actuator is left in a safe state.
	if worker != nil {
		workerCancel()
		if !worker.Wait(2 * time.Second) {
			log.Println("send worker did not drain in time")
		}
	}

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("status server shutdown error: %v", err)
		}
		shutdownCancel()
	}

	log.Println("joy2crsf stopped")
}

// logMappings prints the effective channel routing at startup.
func logMappings(cfg *config.Config) {
	axes := make([]int, 0, len(cfg.AxisMap))
	for a := range cfg.AxisMap {
		axes = append(axes, a)
	}
	sort.Ints(axes)
	for _, a := range axes {
		inv := ""
		if cfg.Inverted(a) {
			inv = " (inverted)"
		}
		log.Printf("axis %d -> CH%d%s", a, cfg.AxisMap[a], inv)
	}

	for _, m := range cfg.Aux {
		extra := ""
		if m.Invert {
			extra = " (inverted)"
		}
		if m.Mode == config.ModeRange && (m.Min != 1000 || m.Max != 2000) {
			extra += fmt.Sprintf(" [%d-%d]", m.Min, m.Max)
		}
		log.Printf("%s %d -> CH%d%s", m.Kind, m.Source, m.Channel, extra)
	}
}

func statusURL(addr string) string {
	if addr == "" {
		return ""
	}
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
