package service

import (
	"testing"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/testutil"
	"github.com/Skotchmaster/storefront/pkg/metrics"
)

type env struct {
	db       *gorm.DB
	repo     *repo.GormRepo
	events   *events.Recorder
	metrics  *metrics.Metrics
	notifier *Notifier
}

func newEnv(t *testing.T) *env {
	t.Helper()

	gdb := testutil.NewDB(t)
	rec := &events.Recorder{}
	m := metrics.New("test")
	return &env{
		db:       gdb,
		repo:     repo.New(gdb),
		events:   rec,
		metrics:  m,
		notifier: &Notifier{Events: rec, Metrics: m},
	}
}
