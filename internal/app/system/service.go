package system

import "context"

// Service is a lifecycle-managed background component. The career evaluation
// runner, the payout poller and the core API services all implement it so the
// manager can bring the platform up and down in registration order.
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
