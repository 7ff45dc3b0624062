package site

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kargig/divemap-sub000/internal/config"
	"github.com/kargig/divemap-sub000/internal/physics"
	"github.com/kargig/divemap-sub000/pkg/logger"
)

// ErrNotFound is returned for a site id that is not configured
var ErrNotFound = errors.New("dive site not found")

// Conditions are the surface corrections a diver applies at a site
type Conditions struct {
	SiteID                 string    `json:"site_id"`
	ElevationM             float64   `json:"elevation_m"`
	SurfacePressureBar     float64   `json:"surface_pressure_bar"`
	AltitudeFactor         float64   `json:"altitude_factor"`
	MagneticDeclinationDeg float64   `json:"magnetic_declination_deg"`
	Date                   time.Time `json:"date"`

	// Set by WithBearing
	TrueBearingDeg     *float64 `json:"true_bearing_deg,omitempty"`
	MagneticBearingDeg *float64 `json:"magnetic_bearing_deg,omitempty"`
}

// WithBearing returns a copy of c carrying the compass bearing to steer for a
// true bearing at the site
func (c Conditions) WithBearing(trueBearingDeg float64) Conditions {
	magnetic := physics.MagneticBearing(trueBearingDeg, c.MagneticDeclinationDeg)
	c.TrueBearingDeg = &trueBearingDeg
	c.MagneticBearingDeg = &magnetic
	return c
}

type cacheKey struct {
	siteID string
	day    string
}

// Service resolves dive sites and computes their conditions.
// Declination only changes slowly, so results are cached per site and UTC day.
type Service struct {
	sites  []config.Site
	byID   map[string]config.Site
	cache  map[cacheKey]Conditions
	mu     sync.RWMutex
	now    func() time.Time
	logger *logger.Logger
}

// NewService creates a new dive site service
func NewService(sites []config.Site, logger *logger.Logger) *Service {
	byID := make(map[string]config.Site, len(sites))
	for _, s := range sites {
		byID[s.ID] = s
	}
	return &Service{
		sites:  sites,
		byID:   byID,
		cache:  make(map[cacheKey]Conditions),
		now:    time.Now,
		logger: logger.Named("sites"),
	}
}

// List returns all configured sites
func (s *Service) List() []config.Site {
	out := make([]config.Site, len(s.sites))
	copy(out, s.sites)
	return out
}

// Get returns a site by id
func (s *Service) Get(id string) (config.Site, bool) {
	site, ok := s.byID[id]
	return site, ok
}

// Conditions returns the current conditions for a configured site
func (s *Service) Conditions(id string) (Conditions, error) {
	site, ok := s.byID[id]
	if !ok {
		return Conditions{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	date := s.now().UTC().Truncate(24 * time.Hour)
	key := cacheKey{siteID: id, day: date.Format("2006-01-02")}

	s.mu.RLock()
	cond, hit := s.cache[key]
	s.mu.RUnlock()
	if hit {
		return cond, nil
	}

	cond = Compute(site, date)

	s.mu.Lock()
	// Drop entries from previous days
	for k := range s.cache {
		if k.day != key.day {
			delete(s.cache, k)
		}
	}
	s.cache[key] = cond
	s.mu.Unlock()

	s.logger.Debug("Computed site conditions",
		logger.String("site", id),
		logger.Time("date", date),
		logger.Float64("surface_pressure_bar", cond.SurfacePressureBar),
		logger.Float64("declination_deg", cond.MagneticDeclinationDeg))

	return cond, nil
}

// Compute returns the conditions at an arbitrary site on a date
func Compute(site config.Site, date time.Time) Conditions {
	return Conditions{
		SiteID:                 site.ID,
		ElevationM:             site.ElevationM,
		SurfacePressureBar:     physics.SurfacePressureBar(site.ElevationM),
		AltitudeFactor:         physics.AltitudeFactor(site.ElevationM),
		MagneticDeclinationDeg: physics.MagneticDeclination(site.Latitude, site.Longitude, site.ElevationM, date),
		Date:                   date,
	}
}
