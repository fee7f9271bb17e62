package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bizops/internal/pkg/money"
)

// DerivePaymentStatus is paid when nothing is owed, unpaid when nothing was paid, partially paid in between.
func DerivePaymentStatus(balance, total decimal.Decimal) PaymentStatus {
	switch {
	case !balance.IsPositive():
		return StatusPaid
	case balance.LessThan(total):
		return StatusPartiallyPaid
	default:
		return StatusUnpaid
	}
}

func NewLedger(total decimal.Decimal) Ledger {
	return Ledger{
		TotalAmount:        total,
		OutstandingBalance: total,
		PaymentStatus:      DerivePaymentStatus(total, total),
		Revision:           1,
	}
}

// CheckPayment validates amount against the current balance without changing anything.
func (l Ledger) CheckPayment(amount decimal.Decimal) error {
	if !amount.IsPositive() || !money.IsCents(amount) {
		return ErrInvalidAmount
	}
	if amount.GreaterThan(l.OutstandingBalance) {
		return fmt.Errorf("%w: balance is %s", ErrOverpayment, l.OutstandingBalance.StringFixed(2))
	}
	return nil
}

// Apply returns the ledger after a payment of amount. The receiver is not modified.
func (l Ledger) Apply(amount decimal.Decimal) (Ledger, error) {
	if err := l.CheckPayment(amount); err != nil {
		return l, err
	}
	next := l
	next.OutstandingBalance = l.OutstandingBalance.Sub(amount)
	next.PaymentStatus = DerivePaymentStatus(next.OutstandingBalance, l.TotalAmount)
	next.Revision = l.Revision + 1
	return next, nil
}

// NewNumber builds a human readable document number such as ORD-20240508-3F9A1C.
func NewNumber(prefix string, now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format("20060102"), suffix)
}
