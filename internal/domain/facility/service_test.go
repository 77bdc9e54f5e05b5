package facility

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Within(ctx context.Context, b Bounds, kind string) ([]Facility, error) {
	args := m.Called(ctx, b, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Facility), args.Error(1)
}

func TestHaversine(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
		delta                  float64
	}{
		{name: "same point", lat1: 55.75, lon1: 37.62, lat2: 55.75, lon2: 37.62, want: 0, delta: 1e-9},
		{name: "moscow to saint petersburg", lat1: 55.7558, lon1: 37.6173, lat2: 59.9343, lon2: 30.3351, want: 634, delta: 5},
		{name: "one degree of latitude", lat1: 0, lon1: 0, lat2: 1, lon2: 0, want: 111.19, delta: 0.1},
		{name: "antipodes", lat1: 0, lon1: 0, lat2: 0, lon2: 180, want: 20015, delta: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Haversine(tt.lat1, tt.lon1, tt.lat2, tt.lon2), tt.delta)
		})
	}
}

func TestBoundsAround_ContainsCircle(t *testing.T) {
	b := BoundsAround(55.75, 37.62, 10)

	assert.Less(t, b.MinLat, 55.75-0.08)
	assert.Greater(t, b.MaxLat, 55.75+0.08)
	assert.Less(t, b.MinLon, 37.62-0.15)
	assert.Greater(t, b.MaxLon, 37.62+0.15)
}

func TestBoundsAround_Pole(t *testing.T) {
	b := BoundsAround(89.99, 0, 50)

	assert.Equal(t, 90.0, b.MaxLat)
	assert.Equal(t, -180.0, b.MinLon)
	assert.Equal(t, 180.0, b.MaxLon)
}

func TestService_Nearby(t *testing.T) {
	repo := new(MockRepository)
	service := NewService(repo, slog.Default())

	candidates := []Facility{
		{ID: 1, Name: "Far clinic", Kind: "clinic", Latitude: 55.95, Longitude: 37.62},
		{ID: 2, Name: "Near pharmacy", Kind: "pharmacy", Latitude: 55.751, Longitude: 37.621},
		{ID: 3, Name: "Mid hospital", Kind: "hospital", Latitude: 55.78, Longitude: 37.62},
	}
	repo.On("Within", mock.Anything, mock.AnythingOfType("facility.Bounds"), "").Return(candidates, nil)

	got, err := service.Nearby(context.Background(), 55.75, 37.62, 10, "", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].ID)
	assert.Equal(t, 3, got[1].ID)
	assert.Less(t, got[0].DistanceKm, got[1].DistanceKm)
	assert.InDelta(t, 3.3, got[1].DistanceKm, 0.2)
}

func TestService_Nearby_Limit(t *testing.T) {
	repo := new(MockRepository)
	service := NewService(repo, slog.Default())

	candidates := []Facility{
		{ID: 1, Latitude: 10.02, Longitude: 10},
		{ID: 2, Latitude: 10.01, Longitude: 10},
		{ID: 3, Latitude: 10.03, Longitude: 10},
	}
	repo.On("Within", mock.Anything, mock.Anything, "lab").Return(candidates, nil)

	got, err := service.Nearby(context.Background(), 10, 10, 0, "lab", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []int{2, 1}, []int{got[0].ID, got[1].ID})
}

func TestService_Nearby_Validation(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		radius   float64
		wantErr  error
	}{
		{name: "latitude out of range", lat: 91, lon: 0, radius: 5, wantErr: ErrInvalidLocation},
		{name: "longitude out of range", lat: 0, lon: -181, radius: 5, wantErr: ErrInvalidLocation},
		{name: "negative radius", lat: 0, lon: 0, radius: -1, wantErr: ErrInvalidRadius},
		{name: "radius too large", lat: 0, lon: 0, radius: MaxRadiusKm + 1, wantErr: ErrInvalidRadius},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			service := NewService(repo, slog.Default())

			_, err := service.Nearby(context.Background(), tt.lat, tt.lon, tt.radius, "", 0)
			assert.ErrorIs(t, err, tt.wantErr)
			repo.AssertNotCalled(t, "Within", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestService_Nearby_RepositoryError(t *testing.T) {
	repo := new(MockRepository)
	service := NewService(repo, slog.Default())
	repo.On("Within", mock.Anything, mock.Anything, "").Return(nil, errors.New("pool closed"))

	_, err := service.Nearby(context.Background(), 1, 1, 1, "", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pool closed")
}
