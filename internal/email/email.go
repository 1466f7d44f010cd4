package email

import (
	"context"
	"fmt"

	"github.com/thorrangonak/ucustazminati-sub002/internal/kafka"
)

// Sender is a placeholder notification channel; real delivery lives in an
// external collaborator.
type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(_ context.Context, event kafka.ClaimEvent) error {
	fmt.Printf("notify owner %s: claim %s is now %s (%.2f %s)\n",
		event.OwnerID, event.ClaimNumber, event.ToStatus, event.Amount, event.Currency)
	return nil
}
