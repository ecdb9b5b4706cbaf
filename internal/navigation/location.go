package navigation

import (
	"context"

	"github.com/platedrop/ordercore/pkg/types"
)

// Fix is one device-location sample. Err marks a failed sample; the
// loop logs it and keeps going.
type Fix struct {
	Position types.LatLng
	Err      error
}

// LocationSource is a push-driven stream of high-accuracy device fixes.
// The channel must close when ctx is cancelled, which is how the
// navigator guarantees no dangling listener survives teardown.
type LocationSource interface {
	Subscribe(ctx context.Context) (<-chan Fix, error)
}
