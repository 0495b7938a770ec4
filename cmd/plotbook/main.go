package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jask/plotbook/internal/bridge"
	"github.com/jask/plotbook/internal/config"
	"github.com/jask/plotbook/internal/database"
	"github.com/jask/plotbook/internal/database/repository"
	"github.com/jask/plotbook/internal/logging"
	"github.com/jask/plotbook/internal/nav"
	"github.com/jask/plotbook/internal/plots"
	"github.com/jask/plotbook/internal/prefs"
	"github.com/jask/plotbook/internal/service"
	"github.com/jask/plotbook/internal/testdata"
	"github.com/jask/plotbook/internal/tui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	catalog, err := plots.Load(cfg.Catalog.Path)
	if err != nil {
		logger.Fatal("load catalog", zap.Error(err))
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		logger.Fatal("mkdir db dir", zap.Error(err))
	}
	if err := database.RunMigrations(cfg.Database.Path); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatal("open db", zap.Error(err))
	}
	defer db.Close()

	// repositories
	bookingRepo := repository.NewBookingRepo(db)
	paymentRepo := repository.NewPaymentRepo(db)
	apptRepo := repository.NewAppointmentRepo(db)

	if cfg.Database.SeedDemo {
		if err := testdata.Seed(ctx, testdata.Repos{Bookings: bookingRepo, Payments: paymentRepo}); err != nil {
			logger.Warn("seed demo bookings", zap.Error(err))
		}
	}

	services := tui.Services{
		Bookings: &service.BookingService{
			DB:           db,
			Bookings:     bookingRepo,
			Payments:     paymentRepo,
			Appointments: apptRepo,
			Log:          logger.Named("bookings"),
		},
		Maintenance: &service.MaintenanceService{DB: db},
	}

	start, err := nav.ParseScreen(cfg.UI.StartScreen)
	if err != nil {
		logger.Warn("unknown start screen, using maps", zap.String("screen", cfg.UI.StartScreen))
		start = nav.Maps
	}

	loc, err := time.LoadLocation(cfg.UI.Timezone)
	if err != nil {
		logger.Warn("using local timezone", zap.String("timezone", cfg.UI.Timezone), zap.Error(err))
		loc = time.Local
	}

	last, err := prefs.LoadLocation()
	if err != nil {
		logger.Warn("read last location", zap.Error(err))
	}
	startLoc, center := startLocation(catalog, last)

	ctrl := nav.New(nav.Options{
		Start:    start,
		Statuses: catalog.InitialStatuses(),
		Location: startLoc,
		Center:   center,
		OnLocation: func(ll plots.LatLng) {
			logger.Info("location reported", zap.Float64("lat", ll.Lat), zap.Float64("lng", ll.Lng))
		},
		Logger: logger.Named("nav"),
	})

	br := bridge.New(cfg.Bridge, logger.Named("bridge"))
	app := tui.New(ctx, cfg, catalog, ctrl, services, loc, logger.Named("tui"))
	onboarded, err := prefs.LoadOnboarding()
	if err != nil {
		logger.Warn("read onboarding state", zap.Error(err))
	}
	if onboarded == nil || !onboarded.Completed {
		app.StartOnboarding()
	} else {
		app.SetProfile(onboarded.Name, onboarded.Email)
	}
	if err := tui.Run(ctx, app, br); err != nil {
		fmt.Printf("error: %v\n", err)
	}
}

// startLocation restores the city picked in a previous session. A city that
// is no longer in the catalogue keeps only its coordinates; with nothing saved
// the map opens on the first catalogue location.
func startLocation(catalog *plots.Catalog, last *prefs.LastLocation) (*plots.Location, plots.LatLng) {
	if last != nil {
		if l, ok := catalog.Location(last.ID); ok {
			return &l, l.Center
		}
		if ll := (plots.LatLng{Lat: last.Lat, Lng: last.Lng}); ll.Valid() {
			return nil, ll
		}
	}
	if locs := catalog.Locations(); len(locs) > 0 {
		return nil, locs[0].Center
	}
	return nil, plots.LatLng{}
}
