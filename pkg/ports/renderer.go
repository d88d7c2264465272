package ports

import (
	"context"

	"github.com/cthstore/storefront/pkg/domain"
)

// Renderer turns a view into a chat message.
// Render edits the message referenced by the target when possible and falls
// back to sending a new one when editing is impossible.
type Renderer interface {
	Render(ctx context.Context, target domain.Target, view domain.View) (domain.MessageRef, error)

	// Notify sends a short standalone notice (corrective prompts, failures).
	Notify(ctx context.Context, target domain.Target, text string) error
}

// Invoice is a payment request built from the cart.
type Invoice struct {
	Title       string
	Description string
	Payload     string
	Currency    string
	Lines       []InvoiceLine
}

// InvoiceLine is one priced row of an invoice (minor units).
type InvoiceLine struct {
	Label  string
	Amount int64
}

// Total sums the invoice lines.
func (i Invoice) Total() int64 {
	var total int64
	for _, l := range i.Lines {
		total += l.Amount
	}
	return total
}

// Checkout delivers invoices to the chat platform's payment flow.
type Checkout interface {
	SendInvoice(ctx context.Context, target domain.Target, invoice Invoice) error
}
