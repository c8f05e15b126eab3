package notification

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/moneyledger/moneyledger/internal/domain"
	"github.com/moneyledger/moneyledger/internal/infrastructure/metrics"
	"github.com/moneyledger/moneyledger/internal/usecase"
)

type jobKind int

const (
	jobCompleted jobKind = iota
	jobFailed
)

type job struct {
	kind jobKind
	txn  *domain.Transaction
}

// Dispatcher implements usecase.Notifier. Enqueueing never blocks the
// transaction path: when the queue is full the notification is dropped
// and counted, because email delivery is best-effort by contract.
type Dispatcher struct {
	accounts usecase.AccountRepository
	users    usecase.UserRepository
	mailer   Mailer
	logger   zerolog.Logger
	metrics  *metrics.Metrics
	queue    chan job
}

// DispatcherConfig holds dependencies for Dispatcher.
type DispatcherConfig struct {
	Accounts  usecase.AccountRepository
	Users     usecase.UserRepository
	Mailer    Mailer
	Logger    zerolog.Logger
	Metrics   *metrics.Metrics
	QueueSize int
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 256
	}

	return &Dispatcher{
		accounts: cfg.Accounts,
		users:    cfg.Users,
		mailer:   cfg.Mailer,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
		queue:    make(chan job, cfg.QueueSize),
	}
}

// NotifyTransferCompleted enqueues debit and credit alerts for a
// completed transaction.
func (d *Dispatcher) NotifyTransferCompleted(txn *domain.Transaction) {
	d.enqueue(job{kind: jobCompleted, txn: txn})
}

// NotifyTransferFailed enqueues a failure alert for the sender.
func (d *Dispatcher) NotifyTransferFailed(txn *domain.Transaction) {
	d.enqueue(job{kind: jobFailed, txn: txn})
}

func (d *Dispatcher) enqueue(j job) {
	select {
	case d.queue <- j:
	default:
		if d.metrics != nil {
			d.metrics.NotificationsDropped.Inc()
		}
		d.logger.Warn().
			Str("transaction_id", j.txn.ID).
			Msg("notification queue full, dropping")
	}
}

// Start runs the delivery worker until the context is cancelled.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.logger.Info().Msg("notification dispatcher started")

	for {
		select {
		case <-ctx.Done():
			d.logger.Info().Msg("notification dispatcher shutting down")
			return ctx.Err()
		case j := <-d.queue:
			d.deliver(ctx, j)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, j job) {
	switch j.kind {
	case jobCompleted:
		d.sendTransferAlert(ctx, j.txn, domain.EntryTypeDebit)
		d.sendTransferAlert(ctx, j.txn, domain.EntryTypeCredit)
	case jobFailed:
		d.sendFailureAlert(ctx, j.txn)
	}
}

func (d *Dispatcher) sendTransferAlert(ctx context.Context, txn *domain.Transaction, direction domain.EntryType) {
	n, err := d.partyView(ctx, txn, direction)
	if err != nil {
		d.logger.Warn().Err(err).Str("transaction_id", txn.ID).Msg("skipping transfer alert")
		return
	}

	var subject, body string
	if n.Direction == domain.EntryTypeDebit {
		subject = "Debit Alert: Transaction Notification"
		body = fmt.Sprintf(
			"Dear %s,\n\nYour account %s has been debited with %s %s. "+
				"The amount was transferred to account %s.\n\n"+
				"If you did not authorize this transaction, please contact support immediately.\n",
			n.Name, n.AccountID, n.Currency, n.Amount.StringFixed(2), n.CounterpartyAccountID,
		)
	} else {
		subject = "Credit Alert: Transaction Notification"
		body = fmt.Sprintf(
			"Dear %s,\n\nYour account %s has been credited with %s %s "+
				"from account %s.\n",
			n.Name, n.AccountID, n.Currency, n.Amount.StringFixed(2), n.CounterpartyAccountID,
		)
	}

	d.send(ctx, n.Email, subject, body)
}

func (d *Dispatcher) sendFailureAlert(ctx context.Context, txn *domain.Transaction) {
	n, err := d.partyView(ctx, txn, domain.EntryTypeDebit)
	if err != nil {
		d.logger.Warn().Err(err).Str("transaction_id", txn.ID).Msg("skipping failure alert")
		return
	}

	subject := "Transaction Failure: Action Required"
	body := fmt.Sprintf(
		"Dear %s,\n\nYour transfer of %s %s from account %s to account %s "+
			"could not be completed. No money has left your account.\n\n"+
			"Please try again or contact support if the problem persists.\n",
		n.Name, n.Currency, n.Amount.StringFixed(2), n.AccountID, n.CounterpartyAccountID,
	)

	d.send(ctx, n.Email, subject, body)
}

// partyView resolves one side of a transfer into its notification. The
// debited party's counterparty is the destination account and vice
// versa.
func (d *Dispatcher) partyView(ctx context.Context, txn *domain.Transaction, direction domain.EntryType) (domain.TransferNotification, error) {
	accountID, counterpartyID := txn.FromAccountID, txn.ToAccountID
	if direction == domain.EntryTypeCredit {
		accountID, counterpartyID = txn.ToAccountID, txn.FromAccountID
	}

	account, err := d.accounts.GetByID(ctx, accountID)
	if err != nil {
		return domain.TransferNotification{}, err
	}

	user, err := d.users.GetByID(ctx, account.UserID)
	if err != nil {
		return domain.TransferNotification{}, err
	}

	return domain.TransferNotification{
		Email:                 user.Email,
		Name:                  user.Name,
		AccountID:             account.ID,
		Currency:              account.Currency,
		Amount:                txn.Amount,
		CounterpartyAccountID: counterpartyID,
		Direction:             direction,
	}, nil
}

func (d *Dispatcher) send(ctx context.Context, to, subject, body string) {
	if err := d.mailer.Send(ctx, to, subject, body); err != nil {
		d.logger.Warn().Err(err).Str("to", to).Msg("email delivery failed")
		return
	}

	if d.metrics != nil {
		d.metrics.NotificationsSent.Inc()
	}
}
