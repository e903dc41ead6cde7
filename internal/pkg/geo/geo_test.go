package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testOffice = Office{
	Point:        Point{Latitude: 16.0544, Longitude: 108.2022},
	RadiusMeters: 200,
}

func ptr(v float64) *float64 { return &v }

func TestDistance_SamePointIsZero(t *testing.T) {
	assert.Equal(t, 0.0, Distance(testOffice.Point, testOffice.Point))
}

func TestDistance_Symmetric(t *testing.T) {
	a := Point{Latitude: 16.0544, Longitude: 108.2022}
	b := Point{Latitude: 16.10, Longitude: 108.30}

	assert.InDelta(t, Distance(a, b), Distance(b, a), 1e-6)
}

func TestDistance_KnownOneKilometer(t *testing.T) {
	bearings := []float64{0, 45, 90, 180, 270}
	for _, bearing := range bearings {
		p := Destination(testOffice.Point, bearing, 1000)
		assert.InDelta(t, 1000, Distance(testOffice.Point, p), 1, "bearing %v", bearing)
	}
}

func TestDistance_OneDegreeOfLatitude(t *testing.T) {
	// One degree along a meridian is R*pi/180.
	d := Distance(Point{Latitude: 0, Longitude: 0}, Point{Latitude: 1, Longitude: 0})
	assert.InDelta(t, 111195, d, 1)
}

func TestOffice_Evaluate(t *testing.T) {
	far := Destination(testOffice.Point, 90, 1000)

	tests := []struct {
		name        string
		lat, lng    *float64
		wantErr     error
		wantAdmit   bool
		minDistance int64
		maxDistance int64
	}{
		{
			name:      "same coordinates",
			lat:       ptr(16.0544),
			lng:       ptr(108.2022),
			wantAdmit: true,
		},
		{
			name:        "inside radius",
			lat:         ptr(16.0546),
			lng:         ptr(108.2023),
			wantAdmit:   true,
			minDistance: 20,
			maxDistance: 30,
		},
		{
			name:        "one kilometer away",
			lat:         ptr(far.Latitude),
			lng:         ptr(far.Longitude),
			wantAdmit:   false,
			minDistance: 999,
			maxDistance: 1001,
		},
		{
			name:        "several kilometers away",
			lat:         ptr(16.10),
			lng:         ptr(108.30),
			wantAdmit:   false,
			minDistance: 10000,
			maxDistance: 13000,
		},
		{
			name:    "missing latitude",
			lng:     ptr(108.2022),
			wantErr: ErrMissingCoordinates,
		},
		{
			name:    "missing longitude",
			lat:     ptr(16.0544),
			wantErr: ErrMissingCoordinates,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := testOffice.Evaluate(tt.lat, tt.lng)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAdmit, result.Admitted)
			assert.Equal(t, 200.0, result.AllowedMeters)
			assert.GreaterOrEqual(t, result.DistanceMeters, tt.minDistance)
			if tt.maxDistance > 0 {
				assert.LessOrEqual(t, result.DistanceMeters, tt.maxDistance)
			}
		})
	}
}

func TestOffice_Evaluate_ZeroRadiusAdmitsExactPoint(t *testing.T) {
	office := Office{Point: testOffice.Point, RadiusMeters: 0}

	result, err := office.Evaluate(ptr(16.0544), ptr(108.2022))

	require.NoError(t, err)
	assert.True(t, result.Admitted)
	assert.Equal(t, int64(0), result.DistanceMeters)
}

func TestOffice_Validate(t *testing.T) {
	assert.NoError(t, testOffice.Validate())
	assert.Error(t, Office{Point: Point{Latitude: 91}}.Validate())
	assert.Error(t, Office{Point: Point{Longitude: -181}}.Validate())
	assert.Error(t, Office{RadiusMeters: -1}.Validate())
}
