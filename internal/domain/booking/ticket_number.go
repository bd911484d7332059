package booking

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	ticketPrefix     = "FLT"
	ticketSuffixLen  = 10
	ticketMaxRetries = 5
)

// TicketNumberGenerator issues ticket numbers of the form FLT + 10 ULID characters
type TicketNumberGenerator struct {
	now func() time.Time
}

func NewTicketNumberGenerator() *TicketNumberGenerator {
	return &TicketNumberGenerator{now: time.Now}
}

// Generate returns a ticket number without checking uniqueness
func (g *TicketNumberGenerator) Generate() string {
	id := ulid.MustNew(ulid.Timestamp(g.now()), ulid.Monotonic(rand.Reader, 0))
	// the leading 10 characters only encode the timestamp
	s := id.String()
	return ticketPrefix + s[len(s)-ticketSuffixLen:]
}

// GenerateUnique retries until exists reports the number as free
func (g *TicketNumberGenerator) GenerateUnique(ctx context.Context, exists func(ctx context.Context, ticketNumber string) (bool, error)) (string, error) {
	for i := 0; i < ticketMaxRetries; i++ {
		candidate := g.Generate()
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check ticket number: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}

	fallback, err := randomBase36(ticketSuffixLen)
	if err != nil {
		return "", fmt.Errorf("failed to generate ticket number: %w", err)
	}
	return ticketPrefix + fallback, nil
}

func randomBase36(n int) (string, error) {
	const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	var sb strings.Builder
	max := big.NewInt(int64(len(alphabet)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(alphabet[idx.Int64()])
	}
	return sb.String(), nil
}
