package health

import "context"

const pkg = "healthHandler/"

type ReadinessChecker interface {
	Ready(ctx context.Context) error
}
