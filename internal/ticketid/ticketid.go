package ticketid

import (
	"io"
	"strings"

	"github.com/google/uuid"
)

const ShortPrefix = "THM-"

type Pair struct {
	TicketID      string
	ShortTicketID string
}

// Generator produces ticket id pairs. A nil Rand uses uuid's default source.
type Generator struct {
	Rand io.Reader
}

func (g Generator) Generate() (Pair, error) {
	var (
		id  uuid.UUID
		err error
	)
	if g.Rand != nil {
		id, err = uuid.NewRandomFromReader(g.Rand)
	} else {
		id, err = uuid.NewRandom()
	}
	if err != nil {
		return Pair{}, err
	}

	ticketID := id.String()
	return Pair{TicketID: ticketID, ShortTicketID: Short(ticketID)}, nil
}

// Short derives the human-facing id from the first segment of a ticket id.
// It is not unique on its own; the store's unique index catches collisions.
func Short(ticketID string) string {
	first, _, _ := strings.Cut(strings.ToLower(ticketID), "-")
	if len(first) > 8 {
		first = first[:8]
	}
	return ShortPrefix + first
}
