package payment

import (
	"context"
	"fmt"
	"math/rand"
)

// SimulatedGateway approves most sessions and refuses the rest, for local
// runs and tests where no hosted gateway is configured.
type SimulatedGateway struct {
	roll func() int
}

func NewSimulatedGateway() *SimulatedGateway {
	return &SimulatedGateway{
		roll: func() int { return rand.Intn(101) }, // 101 because Intn is exclusive of the upper bound
	}
}

func (g *SimulatedGateway) CreateSession(_ context.Context, amountMinor int64, idempotencyKey string) (string, error) {
	if amountMinor <= 0 {
		return "", &SessionError{StatusCode: 400, Reason: "amount must be positive"}
	}
	return decide(g.roll(), idempotencyKey)
}

func decide(roll int, idempotencyKey string) (string, error) {
	if roll < 95 {
		return fmt.Sprintf("pi_sim_%s_secret", idempotencyKey), nil
	}
	return "", &SessionError{StatusCode: 402, Reason: "card_declined"}
}
