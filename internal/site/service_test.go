package site

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kargig/divemap-sub000/internal/config"
	"github.com/kargig/divemap-sub000/internal/physics"
	"github.com/kargig/divemap-sub000/pkg/logger"
)

var testSites = []config.Site{
	{ID: "zenobia", Name: "Zenobia Wreck", Latitude: 34.9, Longitude: 33.65},
	{ID: "titicaca", Name: "Lake Titicaca", Latitude: -15.84, Longitude: -69.33, ElevationM: 3812},
}

func newTestService(now time.Time) *Service {
	svc := NewService(testSites, logger.NewNop())
	svc.now = func() time.Time { return now }
	return svc
}

func TestConditions(t *testing.T) {
	svc := newTestService(time.Date(2022, 3, 10, 15, 30, 0, 0, time.UTC))

	sea, err := svc.Conditions("zenobia")
	require.NoError(t, err)
	assert.InDelta(t, physics.SeaLevelBar, sea.SurfacePressureBar, 1e-9)
	assert.InDelta(t, 1.0, sea.AltitudeFactor, 1e-9)
	assert.Equal(t, time.Date(2022, 3, 10, 0, 0, 0, 0, time.UTC), sea.Date)

	lake, err := svc.Conditions("titicaca")
	require.NoError(t, err)
	assert.Less(t, lake.SurfacePressureBar, 0.7)
	assert.Greater(t, lake.AltitudeFactor, 1.4)
	assert.Equal(t, 3812.0, lake.ElevationM)
}

func TestConditions_Cached(t *testing.T) {
	now := time.Date(2022, 3, 10, 8, 0, 0, 0, time.UTC)
	svc := newTestService(now)

	first, err := svc.Conditions("zenobia")
	require.NoError(t, err)
	assert.Len(t, svc.cache, 1)

	svc.now = func() time.Time { return now.Add(2 * time.Hour) }
	second, err := svc.Conditions("zenobia")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, svc.cache, 1)

	// next day evicts the old entry
	svc.now = func() time.Time { return now.Add(24 * time.Hour) }
	_, err = svc.Conditions("zenobia")
	require.NoError(t, err)
	assert.Len(t, svc.cache, 1)
}

func TestConditions_UnknownSite(t *testing.T) {
	svc := newTestService(time.Now())
	_, err := svc.Conditions("atlantis")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConditions_WithBearing(t *testing.T) {
	cond := Conditions{SiteID: "zenobia", MagneticDeclinationDeg: 5}

	steer := cond.WithBearing(90)
	require.NotNil(t, steer.MagneticBearingDeg)
	assert.InDelta(t, 85, *steer.MagneticBearingDeg, 1e-9)
	assert.Equal(t, 90.0, *steer.TrueBearingDeg)

	// the receiver is left untouched
	assert.Nil(t, cond.MagneticBearingDeg)
}

func TestListAndGet(t *testing.T) {
	svc := newTestService(time.Now())

	list := svc.List()
	assert.Len(t, list, 2)
	list[0].Name = "changed"
	assert.Equal(t, "Zenobia Wreck", svc.List()[0].Name)

	site, ok := svc.Get("titicaca")
	assert.True(t, ok)
	assert.Equal(t, "Lake Titicaca", site.Name)
}
