package delivery

import (
	"context"
	"errors"
	"testing"

	"github.com/platedrop/ordercore/pkg/types"
)

type stubGeocodeClient struct {
	point *types.LatLng
	err   error
	calls int
}

func (s *stubGeocodeClient) Geocode(ctx context.Context, address string) (*types.LatLng, error) {
	s.calls++
	return s.point, s.err
}

func TestResolveReturnsCoordinates(t *testing.T) {
	t.Parallel()

	client := &stubGeocodeClient{point: &types.LatLng{Latitude: 39.78, Longitude: -89.65}}
	geocoder := NewGeocoder(client, nil, 0, nil)

	point := geocoder.Resolve(context.Background(), "1 Main St, Springfield, IL 62701")
	if point == nil || point.Latitude != 39.78 {
		t.Fatalf("point = %+v", point)
	}
}

func TestResolveSwallowsProviderErrors(t *testing.T) {
	t.Parallel()

	client := &stubGeocodeClient{err: errors.New("mapbox down")}
	geocoder := NewGeocoder(client, nil, 0, nil)

	if point := geocoder.Resolve(context.Background(), "somewhere"); point != nil {
		t.Fatalf("expected nil on provider error, got %+v", point)
	}
}

func TestResolveUnresolvableAddress(t *testing.T) {
	t.Parallel()

	geocoder := NewGeocoder(&stubGeocodeClient{}, nil, 0, nil)
	if point := geocoder.Resolve(context.Background(), "gibberish"); point != nil {
		t.Fatalf("expected nil for unresolvable address, got %+v", point)
	}
}

func TestResolveWithoutClient(t *testing.T) {
	t.Parallel()

	var geocoder *Geocoder
	if point := geocoder.Resolve(context.Background(), "anywhere"); point != nil {
		t.Fatalf("expected nil from nil geocoder, got %+v", point)
	}
}
