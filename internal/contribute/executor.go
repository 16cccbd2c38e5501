package contribute

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"offsetScope/internal/model"
)

// State names one stage of a contribution attempt.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StateConfirming State = "confirming"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// Ledger is the registry surface the executor needs. Validation reads
// always hit the live ledger, never a cache.
type Ledger interface {
	Project(ctx context.Context, id uint64) (model.Project, error)
	ProjectProgress(ctx context.Context, id uint64) (uint64, error)
	BalanceOf(ctx context.Context, account common.Address) (uint64, error)
	CompensateProject(opts *bind.TransactOpts, projectID, amount uint64) (*types.Transaction, error)
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

// Request is one proposed contribution, consumed by a single attempt.
type Request struct {
	ProjectID uint64
	Amount    uint64
}

// Result reports the outcome of an attempt. Progress is only meaningful
// when ProgressConfirmed is set; it is always re-read from the ledger,
// never computed locally.
type Result struct {
	TxHash            string
	TokensContributed uint64
	Progress          uint64
	ProgressConfirmed bool
}

// Executor validates and executes contribution attempts, one at a time.
// The submission is the single state-changing call and is issued at
// most once per attempt; a failed attempt needs a fresh user action.
type Executor struct {
	ledger         Ledger
	account        common.Address
	signer         *bind.TransactOpts
	confirmTimeout time.Duration
	logger         *zap.Logger

	mu       sync.Mutex
	inFlight bool
	state    State
}

// NewExecutor builds an Executor for one signing account.
func NewExecutor(ledger Ledger, account common.Address, signer *bind.TransactOpts, confirmTimeout time.Duration, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if confirmTimeout <= 0 {
		confirmTimeout = 2 * time.Minute
	}
	return &Executor{
		ledger:         ledger,
		account:        account,
		signer:         signer,
		confirmTimeout: confirmTimeout,
		logger:         logger,
		state:          StateIdle,
	}
}

// State returns the current attempt state.
func (e *Executor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Executor) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// Contribute runs one attempt through the full state machine. A second
// call while an attempt is in flight fails with ErrAttemptInFlight
// without touching the ledger.
//
// On ErrConfirmationIndeterminate the returned Result still carries the
// transaction hash: the submission was accepted and only the progress
// re-read failed.
func (e *Executor) Contribute(ctx context.Context, req Request) (*Result, error) {
	e.mu.Lock()
	if e.inFlight {
		e.mu.Unlock()
		return nil, ErrAttemptInFlight
	}
	e.inFlight = true
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.inFlight = false
		e.mu.Unlock()
	}()

	e.setState(StateValidating)
	e.logger.Info("validating contribution",
		zap.Uint64("project_id", req.ProjectID),
		zap.Uint64("amount", req.Amount),
	)

	project, err := e.ledger.Project(ctx, req.ProjectID)
	if err != nil {
		return nil, e.fail(fmt.Errorf("read project: %w", err))
	}
	progress, err := e.ledger.ProjectProgress(ctx, req.ProjectID)
	if err != nil {
		return nil, e.fail(fmt.Errorf("read progress: %w", err))
	}
	balance, err := e.ledger.BalanceOf(ctx, e.account)
	if err != nil {
		return nil, e.fail(fmt.Errorf("read balance: %w", err))
	}

	if err := Validate(project, progress, balance, req.Amount); err != nil {
		return nil, e.fail(err)
	}

	e.setState(StateSubmitting)
	tx, err := e.ledger.CompensateProject(e.signer, req.ProjectID, req.Amount)
	if err != nil {
		return nil, e.fail(&SubmissionRejectedError{Reason: err.Error(), Err: err})
	}

	e.setState(StateConfirming)
	e.logger.Info("contribution submitted",
		zap.Uint64("project_id", req.ProjectID),
		zap.String("tx", tx.Hash().Hex()),
	)

	confirmCtx, cancel := context.WithTimeout(ctx, e.confirmTimeout)
	defer cancel()

	receipt, err := e.ledger.WaitMined(confirmCtx, tx)
	if err != nil {
		// The ledger either included the transaction or it did not;
		// there is no local state to roll back.
		return &Result{TxHash: tx.Hash().Hex(), TokensContributed: req.Amount},
			fmt.Errorf("%w: wait mined: %w", ErrConfirmationIndeterminate, err)
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return nil, e.fail(&SubmissionRejectedError{Reason: "transaction reverted"})
	}

	newProgress, err := e.ledger.ProjectProgress(confirmCtx, req.ProjectID)
	if err != nil {
		return &Result{TxHash: tx.Hash().Hex(), TokensContributed: req.Amount},
			fmt.Errorf("%w: progress re-read: %w", ErrConfirmationIndeterminate, err)
	}

	e.setState(StateSucceeded)
	e.logger.Info("contribution confirmed",
		zap.Uint64("project_id", req.ProjectID),
		zap.Uint64("amount", req.Amount),
		zap.Uint64("progress", newProgress),
		zap.String("tx", tx.Hash().Hex()),
	)

	return &Result{
		TxHash:            tx.Hash().Hex(),
		TokensContributed: req.Amount,
		Progress:          newProgress,
		ProgressConfirmed: true,
	}, nil
}

func (e *Executor) fail(err error) error {
	e.setState(StateFailed)
	e.logger.Warn("contribution attempt failed", zap.Error(err))
	return err
}
