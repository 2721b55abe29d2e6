// Package alert pushes newly found golden deals to Telegram, keyed by
// fingerprint so re-running a batch never re-alerts on the same vehicle.
package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/motorscout/deals-cli/internal/model"
	"github.com/motorscout/deals-cli/internal/store"
	"github.com/motorscout/deals-cli/pkg/telegram"
)

// Notifier sends golden-deal alerts and records which fingerprints were
// already notified.
type Notifier struct {
	store  store.Store
	client telegram.Client
	chatID string
}

func New(st store.Store, client telegram.Client, chatID string) *Notifier {
	return &Notifier{store: st, client: client, chatID: chatID}
}

// Notify alerts on every golden deal in the batch that has not been alerted
// on before. One listing's failure does not stop the rest; the first error is
// returned after the loop.
func (n *Notifier) Notify(ctx context.Context, scored []model.ScoredListing) (int, error) {
	var sent int
	var firstErr error

	for i := range scored {
		s := &scored[i]
		if s.Class != model.DealGolden || len(s.Disqualified) > 0 {
			continue
		}

		seen, err := n.store.WasNotified(ctx, s.Fingerprint)
		if err != nil {
			return sent, eris.Wrap(err, "alert: check notified")
		}
		if seen {
			continue
		}

		if err := n.client.SendMessage(ctx, n.chatID, FormatDeal(s)); err != nil {
			zap.L().Warn("alert: send failed",
				zap.String("fingerprint", s.Fingerprint),
				zap.Error(err),
			)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := n.store.MarkNotified(ctx, s.Fingerprint); err != nil {
			return sent, eris.Wrap(err, "alert: mark notified")
		}
		sent++
	}

	if sent > 0 {
		zap.L().Info("alert: golden deals notified", zap.Int("sent", sent))
	}
	return sent, firstErr
}

// FormatDeal renders the Telegram message for one deal.
func FormatDeal(s *model.ScoredListing) string {
	l := &s.Listing
	savings := s.FairValue - l.Price
	location := l.Location
	if location == "" {
		location = "Slovensko"
	}

	return fmt.Sprintf(`🌟 *GOLDEN DEAL!* -%.0f%%

🚗 *%s %s* (%d)
💰 Cena: €%.0f
📊 Férová hodnota: €%.0f
💸 Zľava: -%.0f%% (€%.0f)
📍 Lokalita: %s
🔗 [Zobraziť inzerát](%s)

⏰ Nájdené: %s`,
		s.Discount,
		l.Make, l.Model, l.Year,
		l.Price,
		s.FairValue,
		s.Discount, savings,
		location,
		l.URL,
		time.Now().Format("02.01.2006"),
	)
}
