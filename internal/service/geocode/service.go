package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/viciniti/booking-api/internal/config"
	"github.com/viciniti/booking-api/internal/model"
	"github.com/viciniti/booking-api/pkg/geo"
	"github.com/viciniti/booking-api/pkg/metrics"
)

// Geocoder resolves a postal address to a point. Implementations return
// (nil, nil) when the address cannot be resolved; lookup failure is not an
// error for callers, it just disables proximity features.
type Geocoder interface {
	Geocode(ctx context.Context, addr model.Address) (*geo.Point, error)
}

type Service struct {
	baseURL   string
	userAgent string
	client    *http.Client
	cache     *cache.Cache
	metrics   *metrics.Metrics
	logger    *zerolog.Logger
}

func NewService(cfg config.GeocoderConfig, m *metrics.Metrics, logger *zerolog.Logger) *Service {
	ttl := time.Duration(cfg.CacheTTLHours) * time.Hour
	return &Service{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		cache:   cache.New(ttl, ttl/2),
		metrics: m,
		logger:  logger,
	}
}

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode tries progressively simpler renderings of the address: the full
// address first, then without the postal code, then street plus city and
// state only. The first variant that resolves wins.
func (s *Service) Geocode(ctx context.Context, addr model.Address) (*geo.Point, error) {
	if !addr.Complete() {
		return nil, nil
	}

	for _, query := range addressVariants(addr) {
		if point, ok := s.cached(query); ok {
			s.metrics.GeocodeCacheHits.Inc()
			return point, nil
		}

		point, err := s.lookup(ctx, query)
		if err != nil {
			s.metrics.GeocodeLookups.WithLabelValues("error").Inc()
			s.logger.Warn().Err(err).Str("query", query).Msg("geocode lookup failed")
			continue
		}
		if point == nil {
			s.metrics.GeocodeLookups.WithLabelValues("miss").Inc()
			continue
		}

		s.metrics.GeocodeLookups.WithLabelValues("hit").Inc()
		s.cache.SetDefault(query, *point)
		return point, nil
	}

	return nil, nil
}

func (s *Service) cached(query string) (*geo.Point, bool) {
	v, ok := s.cache.Get(query)
	if !ok {
		return nil, false
	}
	point := v.(geo.Point)
	return &point, true
}

func (s *Service) lookup(ctx context.Context, query string) (*geo.Point, error) {
	u := fmt.Sprintf("%s/search?q=%s&format=json&limit=1", s.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocode request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call geocoder: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode geocoder response: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse longitude: %w", err)
	}

	return &geo.Point{Latitude: lat, Longitude: lon}, nil
}

func addressVariants(addr model.Address) []string {
	full := joinParts(addr.Line1, addr.City, addr.State, addr.PostalCode, addr.Country)
	noZip := joinParts(addr.Line1, addr.City, addr.State, addr.Country)
	minimal := joinParts(addr.Line1, addr.City, addr.State)

	variants := []string{full}
	if noZip != full {
		variants = append(variants, noZip)
	}
	if minimal != noZip && minimal != full {
		variants = append(variants, minimal)
	}
	return variants
}

func joinParts(parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ", ")
}
