package api

import (
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/color-game/contest/colors"
	"github.com/color-game/contest/config"
	"github.com/color-game/contest/ledger"
	"github.com/color-game/contest/models"
	"github.com/prometheus/client_golang/prometheus"
)

type Application struct {
	Config  config.Config
	Ledger  *ledger.Ledger
	Palette []models.PaletteColor
	Metric  colors.Metric
	Metrics *Metrics
	Logger  *slog.Logger

	now   func() time.Time
	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewApplication wires the HTTP layer to a ledger. Metrics are registered
// on reg and kept in sync with the ledger through a subscription.
func NewApplication(cfg config.Config, l *ledger.Ledger, palette []models.PaletteColor, reg *prometheus.Registry, logger *slog.Logger) (*Application, error) {
	metric, err := colors.ParseMetric(cfg.ScoringMetric)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	app := &Application{
		Config:  cfg,
		Ledger:  l,
		Palette: palette,
		Metric:  metric,
		Metrics: NewMetrics(reg),
		Logger:  logger,
		now:     time.Now,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	app.Metrics.ObserveState(l.Snapshot())
	l.Subscribe(app.Metrics.ObserveState)
	return app, nil
}

func (app *Application) randomSample() models.ColorSample {
	app.rngMu.Lock()
	defer app.rngMu.Unlock()
	return colors.RandomSample(app.rng)
}
