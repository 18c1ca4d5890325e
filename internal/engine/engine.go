package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nathanyu/account-transfer/internal/domain"
	"github.com/nathanyu/account-transfer/internal/journal"
	"github.com/nathanyu/account-transfer/internal/store"
	"github.com/nathanyu/account-transfer/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Notifier delivers a message to an account holder after a completed
// transfer. Delivery is fire-and-forget; the engine never consumes a
// result.
type Notifier interface {
	Notify(accountID, message string)
}

// TransferEngine executes balance transfers against the account store.
// Correctness rests on two rules: both account locks are taken in the
// store's canonical order, and the overdraft check happens under those
// locks.
type TransferEngine struct {
	store    *store.AccountStore
	notifier Notifier
	journal  *journal.Journal
}

// NewTransferEngine creates an engine. The journal may be nil to disable
// audit output.
func NewTransferEngine(accounts *store.AccountStore, notifier Notifier, jnl *journal.Journal) *TransferEngine {
	return &TransferEngine{
		store:    accounts,
		notifier: notifier,
		journal:  jnl,
	}
}

// Transfer moves transfer.Amount from the source account to the
// destination account, atomically with respect to every other transfer
// touching either account. On any failure neither balance changes.
func (e *TransferEngine) Transfer(ctx context.Context, transfer domain.Transfer) error {
	start := time.Now()

	if transfer.TransferID == "" {
		transfer.TransferID = uuid.Must(uuid.NewV7()).String()
	}

	if telemetry.Tracer != nil {
		var span trace.Span
		ctx, span = telemetry.Tracer.Start(ctx, "engine.Transfer",
			trace.WithAttributes(
				attribute.String("transfer_id", transfer.TransferID),
				attribute.String("from_account", transfer.FromAccount),
				attribute.String("to_account", transfer.ToAccount),
				attribute.String("amount", transfer.Amount.String()),
			),
		)
		defer span.End()
	}

	err := e.execute(transfer)

	telemetry.TransferProcessingDuration.Observe(time.Since(start).Seconds())
	e.recordOutcome(ctx, transfer, err)
	e.appendRecord(ctx, transfer, err)

	if err == nil {
		e.notifyParties(transfer)
		e.updateBalanceMetrics()
	}
	return err
}

// execute runs validation, resolution and the locked update. Failures are
// returned as-is; the caller owns metrics, journal and notification.
func (e *TransferEngine) execute(transfer domain.Transfer) error {
	// Re-validate even though the boundary already did; the engine must
	// not trust callers.
	if err := transfer.Validate(); err != nil {
		return err
	}

	// Resolve live handles before locking. The critical section operates
	// on the store's records, not snapshots.
	from, err := e.store.Acquire(transfer.FromAccount)
	if err != nil {
		return tagSide(err, domain.SideFrom)
	}
	to, err := e.store.Acquire(transfer.ToAccount)
	if err != nil {
		return tagSide(err, domain.SideTo)
	}

	lockStart := time.Now()
	unlock := store.LockPair(from, to)
	telemetry.LockWaitDuration.Observe(time.Since(lockStart).Seconds())
	defer unlock()

	// Overdraft is checked under both locks: a check before acquisition
	// would race with a concurrent transfer draining the source.
	fromAcc := from.Account()
	toAcc := to.Account()
	if fromAcc.Balance.LessThan(transfer.Amount) {
		return fmt.Errorf("account %s balance %s below %s: %w",
			fromAcc.ID, fromAcc.Balance, transfer.Amount, domain.ErrOverdraft)
	}

	debited := domain.Account{ID: fromAcc.ID, Balance: fromAcc.Balance.Sub(transfer.Amount)}
	credited := domain.Account{ID: toAcc.ID, Balance: toAcc.Balance.Add(transfer.Amount)}

	if err := e.store.Update(debited); err != nil {
		return err
	}
	return e.store.Update(credited)
}

// notifyParties informs both account holders. Locks are already released;
// a slow or failing sink never blocks or fails the transfer.
func (e *TransferEngine) notifyParties(transfer domain.Transfer) {
	if e.notifier == nil {
		return
	}

	e.notifier.Notify(transfer.FromAccount, fmt.Sprintf(
		"Transfer to account %s completed successfully. Amount: %s",
		transfer.ToAccount, transfer.Amount))
	e.notifier.Notify(transfer.ToAccount, fmt.Sprintf(
		"Transfer from account %s completed successfully. Amount: %s",
		transfer.FromAccount, transfer.Amount))
}

// appendRecord writes the audit entry. Journal errors are logged and
// dropped; the journal is not a durability mechanism.
func (e *TransferEngine) appendRecord(ctx context.Context, transfer domain.Transfer, transferErr error) {
	if e.journal == nil {
		return
	}

	rec := domain.TransferRecord{
		TransferID:  transfer.TransferID,
		FromAccount: transfer.FromAccount,
		ToAccount:   transfer.ToAccount,
		Amount:      transfer.Amount.String(),
		Status:      domain.RecordStatusCompleted,
	}
	if transferErr != nil {
		rec.Status = domain.RecordStatusRejected
		rec.Reason = transferErr.Error()
	}

	writeStart := time.Now()
	if err := e.journal.Append(rec); err != nil {
		slog.WarnContext(ctx, "failed to append transfer record",
			slog.String("transfer_id", transfer.TransferID),
			slog.Any("error", err))
		return
	}
	telemetry.JournalWriteDuration.Observe(time.Since(writeStart).Seconds())
}

func (e *TransferEngine) recordOutcome(ctx context.Context, transfer domain.Transfer, err error) {
	outcome := outcomeLabel(err)
	telemetry.TransfersTotal.WithLabelValues(outcome).Inc()
	amount, _ := transfer.Amount.Float64()

	if err == nil {
		telemetry.TransferAmount.WithLabelValues("completed").Observe(amount)
		if span := trace.SpanFromContext(ctx); span.IsRecording() {
			span.SetStatus(codes.Ok, "")
		}
		slog.InfoContext(ctx, "transfer completed",
			slog.String("transfer_id", transfer.TransferID),
			slog.String("from_account", transfer.FromAccount),
			slog.String("to_account", transfer.ToAccount),
			slog.String("amount", transfer.Amount.String()))
		return
	}

	telemetry.TransferAmount.WithLabelValues("rejected").Observe(amount)
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("reject_reason", outcome))
	}
	slog.InfoContext(ctx, "transfer rejected",
		slog.String("transfer_id", transfer.TransferID),
		slog.String("reason", outcome),
		slog.Any("error", err))
}

func (e *TransferEngine) updateBalanceMetrics() {
	for _, acc := range e.store.All() {
		balance, _ := acc.Balance.Float64()
		telemetry.AccountBalanceGauge.WithLabelValues(acc.ID).Set(balance)
	}
	total, _ := e.store.TotalBalance().Float64()
	telemetry.TotalBalanceGauge.Set(total)
	telemetry.AccountCount.Set(float64(e.store.Len()))
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "completed"
	case errors.Is(err, domain.ErrOverdraft):
		return "overdraft"
	case errors.Is(err, domain.ErrAccountNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrSameAccountTransfer):
		return "same_account"
	case errors.Is(err, domain.ErrInvalidAmount):
		return "invalid_amount"
	default:
		return "error"
	}
}

func tagSide(err error, side string) error {
	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		return nf.WithSide(side)
	}
	return err
}
