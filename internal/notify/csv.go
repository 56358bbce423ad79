package notify

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"astro-readings/internal/model"
)

// csvHeader is the fixed, versioned column set. New columns are appended,
// existing positions never move.
var csvHeader = []string{
	"timestamp", "event", "order_id", "name", "email", "reading", "mode",
	"payment_status", "amount", "currency",
	"birth_date", "birth_time", "birth_place",
	"partner_birth_date", "partner_birth_time", "partner_birth_place",
	"question", "payer_name", "payer_email",
}

// CSVSink appends one row per lifecycle event to a durable log file.
type CSVSink struct {
	path string
	mu   sync.Mutex
}

func NewCSVSink(path string) *CSVSink {
	return &CSVSink{path: path}
}

func (s *CSVSink) OrderCreated(ctx context.Context, order *model.Order, item *model.OrderItem) error {
	return s.append(eventFromOrder(EventCreated, order))
}

func (s *CSVSink) OrderPaid(ctx context.Context, order *model.Order, set *model.Settlement) error {
	return s.append(eventFromSettlement(order, set))
}

func (s *CSVSink) append(e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}
	}

	_, statErr := os.Stat(s.path)
	newFile := os.IsNotExist(statErr)

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open event log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if newFile {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	row := []string{
		time.Now().UTC().Format(time.RFC3339), e.Event, e.OrderID, e.Name, e.Email,
		e.Reading, e.Mode, e.PaymentStatus, e.Amount, e.Currency,
		e.BirthDate, e.BirthTime, e.BirthPlace,
		e.PartnerBirthDate, e.PartnerBirthTime, e.PartnerBirthPlace,
		e.Question, e.PayerName, e.PayerEmail,
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("write event row: %w", err)
	}
	w.Flush()
	return w.Error()
}
