package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sjbaraho/app-places-backend/models"
	"github.com/sjbaraho/app-places-backend/utils/errors"
)

// Geocoder turns a free-text address into coordinates.
type Geocoder interface {
	Resolve(ctx context.Context, address string) (models.Location, error)
}

// GoogleGeocoder resolves addresses with the Google Geocoding API.
type GoogleGeocoder struct {
	endpoint string
	apiKey   string
	timeout  time.Duration
	client   *http.Client
}

func NewGoogleGeocoder(endpoint, apiKey string, timeout time.Duration) *GoogleGeocoder {
	return &GoogleGeocoder{
		endpoint: endpoint,
		apiKey:   apiKey,
		timeout:  timeout,
		client:   &http.Client{Timeout: timeout},
	}
}

type geocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location models.Location `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Resolve never retries. Any failure, including the timeout, is reported as
// ErrGeocodeFailure; an address with no match uses status 422.
func (g *GoogleGeocoder) Resolve(ctx context.Context, address string) (models.Location, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return models.Location{}, errors.ErrGeocodeFailure.WithStatus(http.StatusUnprocessableEntity)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	q := url.Values{}
	q.Set("address", address)
	q.Set("key", g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return models.Location{}, errors.Wrap(err, errors.ErrGeocodeFailure)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return models.Location{}, errors.Wrap(err, errors.ErrGeocodeFailure)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Location{}, errors.Wrap(fmt.Errorf("geocoding provider returned %d", resp.StatusCode), errors.ErrGeocodeFailure)
	}

	var body geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.Location{}, errors.Wrap(err, errors.ErrGeocodeFailure)
	}

	switch {
	case body.Status == "ZERO_RESULTS" || (body.Status == "OK" && len(body.Results) == 0):
		return models.Location{}, errors.ErrGeocodeFailure.WithStatus(http.StatusUnprocessableEntity)
	case body.Status != "OK":
		return models.Location{}, errors.Wrap(fmt.Errorf("geocoding status %s: %s", body.Status, body.ErrorMessage), errors.ErrGeocodeFailure)
	}

	loc := body.Results[0].Geometry.Location
	if !loc.Valid() {
		return models.Location{}, errors.Wrap(fmt.Errorf("geocoding returned out of range %v", loc), errors.ErrGeocodeFailure)
	}
	return loc, nil
}

// CachedGeocoder keeps successful lookups in Redis. Cache failures are logged
// and the lookup falls through to the wrapped geocoder.
type CachedGeocoder struct {
	next        Geocoder
	redisClient *redis.Client
	ttl         time.Duration
}

func NewCachedGeocoder(next Geocoder, redisClient *redis.Client, ttl time.Duration) *CachedGeocoder {
	return &CachedGeocoder{next: next, redisClient: redisClient, ttl: ttl}
}

func geocodeKey(address string) string {
	return "geocode:" + strings.ToLower(strings.Join(strings.Fields(address), " "))
}

func (c *CachedGeocoder) Resolve(ctx context.Context, address string) (models.Location, error) {
	key := geocodeKey(address)

	cached, err := c.redisClient.Get(ctx, key).Result()
	switch {
	case err == nil:
		var loc models.Location
		jsonErr := json.Unmarshal([]byte(cached), &loc)
		if jsonErr == nil {
			return loc, nil
		}
		log.Printf("Failed to unmarshal cached location for %q: %v", address, jsonErr)
	case !errors.Is(err, redis.Nil):
		log.Printf("Redis geocode cache read failed: %v", err)
	}

	loc, err := c.next.Resolve(ctx, address)
	if err != nil {
		return models.Location{}, err
	}

	locJSON, err := json.Marshal(loc)
	if err == nil {
		err = c.redisClient.Set(ctx, key, locJSON, c.ttl).Err()
	}
	if err != nil {
		log.Printf("Redis geocode cache write failed: %v", err)
	}
	return loc, nil
}

// PlaceIndex is a geospatial index of place ids, kept beside the store for
// nearby lookups. It is not part of the atomic unit.
type PlaceIndex interface {
	Add(ctx context.Context, place models.Place) error
	Remove(ctx context.Context, placeID string) error
	Nearby(ctx context.Context, center models.Location, radiusKm float64, limit int) ([]string, error)
}

const placesGeoKey = "places:geo"

type RedisPlaceIndex struct {
	redisClient *redis.Client
}

func NewRedisPlaceIndex(redisClient *redis.Client) *RedisPlaceIndex {
	return &RedisPlaceIndex{redisClient: redisClient}
}

func (i *RedisPlaceIndex) Add(ctx context.Context, place models.Place) error {
	return i.redisClient.GeoAdd(ctx, placesGeoKey, &redis.GeoLocation{
		Name:      place.ID,
		Longitude: place.Location.Lng,
		Latitude:  place.Location.Lat,
	}).Err()
}

func (i *RedisPlaceIndex) Remove(ctx context.Context, placeID string) error {
	return i.redisClient.ZRem(ctx, placesGeoKey, placeID).Err()
}

// Nearby returns place ids closest first.
func (i *RedisPlaceIndex) Nearby(ctx context.Context, center models.Location, radiusKm float64, limit int) ([]string, error) {
	geoResults, err := i.redisClient.GeoRadius(ctx, placesGeoKey, center.Lng, center.Lat, &redis.GeoRadiusQuery{
		Radius:   radiusKm,
		Unit:     "km",
		WithDist: true,
		Sort:     "ASC",
		Count:    limit,
	}).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(geoResults))
	for _, r := range geoResults {
		ids = append(ids, r.Name)
	}
	return ids, nil
}
