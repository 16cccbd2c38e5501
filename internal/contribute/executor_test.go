package contribute

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"offsetScope/internal/model"
)

type fakeLedger struct {
	mu sync.Mutex

	project       model.Project
	projectErr    error
	progress      uint64
	progressAfter uint64
	progressErr   error
	rereadErr     error
	balance       uint64

	compensateErr   error
	compensateCalls int
	progressReads   int

	waitErr       error
	receiptStatus uint64
	waitRelease   chan struct{}
	waitEntered   chan struct{}
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{receiptStatus: types.ReceiptStatusSuccessful}
}

func (f *fakeLedger) Project(_ context.Context, _ uint64) (model.Project, error) {
	if f.projectErr != nil {
		return model.Project{}, f.projectErr
	}
	return f.project, nil
}

func (f *fakeLedger) ProjectProgress(_ context.Context, _ uint64) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.progressReads++
	if f.progressReads == 1 {
		return f.progress, f.progressErr
	}
	return f.progressAfter, f.rereadErr
}

func (f *fakeLedger) BalanceOf(_ context.Context, _ common.Address) (uint64, error) {
	return f.balance, nil
}

func (f *fakeLedger) CompensateProject(_ *bind.TransactOpts, _, _ uint64) (*types.Transaction, error) {
	f.mu.Lock()
	f.compensateCalls++
	f.mu.Unlock()
	if f.compensateErr != nil {
		return nil, f.compensateErr
	}
	to := common.HexToAddress("0x0000000000000000000000000000000000000001")
	return types.NewTx(&types.LegacyTx{
		Nonce:    1,
		To:       &to,
		Gas:      100000,
		GasPrice: big.NewInt(1),
		Value:    big.NewInt(0),
	}), nil
}

func (f *fakeLedger) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	if f.waitEntered != nil {
		close(f.waitEntered)
	}
	if f.waitRelease != nil {
		select {
		case <-f.waitRelease:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.waitErr != nil {
		return nil, f.waitErr
	}
	return &types.Receipt{Status: f.receiptStatus, TxHash: tx.Hash()}, nil
}

func (f *fakeLedger) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.compensateCalls
}

func activeProject(required uint64) model.Project {
	return model.Project{ID: 1, Name: "Reforestation", RequiredTokens: required, Active: true}
}

func TestContributeSucceeds(t *testing.T) {
	ledger := newFakeLedger()
	ledger.project = activeProject(8)
	ledger.progress = 50
	ledger.progressAfter = 87
	ledger.balance = 10

	executor := NewExecutor(ledger, common.Address{}, nil, 0, nil)

	result, err := executor.Contribute(context.Background(), Request{ProjectID: 1, Amount: 3})
	if err != nil {
		t.Fatalf("contribute failed: %v", err)
	}
	if !result.ProgressConfirmed {
		t.Fatalf("expected confirmed progress")
	}
	if result.Progress != 87 {
		t.Fatalf("expected re-read progress 87, got %d", result.Progress)
	}
	if result.TokensContributed != 3 {
		t.Fatalf("expected 3 tokens contributed, got %d", result.TokensContributed)
	}
	if executor.State() != StateSucceeded {
		t.Fatalf("expected state succeeded, got %s", executor.State())
	}
}

func TestContributeInsufficientBalanceSkipsSubmission(t *testing.T) {
	ledger := newFakeLedger()
	ledger.project = activeProject(8)
	ledger.progress = 0
	ledger.balance = 2

	executor := NewExecutor(ledger, common.Address{}, nil, 0, nil)

	_, err := executor.Contribute(context.Background(), Request{ProjectID: 1, Amount: 3})
	var insufficient *InsufficientBalanceError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientBalanceError, got %v", err)
	}
	if ledger.calls() != 0 {
		t.Fatalf("submission must not happen on validation failure, got %d calls", ledger.calls())
	}
	if executor.State() != StateFailed {
		t.Fatalf("expected state failed, got %s", executor.State())
	}
}

func TestContributeSubmissionRejected(t *testing.T) {
	ledger := newFakeLedger()
	ledger.project = activeProject(8)
	ledger.progress = 0
	ledger.balance = 10
	ledger.compensateErr = fmt.Errorf("execution reverted: project closed")

	executor := NewExecutor(ledger, common.Address{}, nil, 0, nil)

	_, err := executor.Contribute(context.Background(), Request{ProjectID: 1, Amount: 3})
	var rejected *SubmissionRejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected SubmissionRejectedError, got %v", err)
	}
	if rejected.Reason != "execution reverted: project closed" {
		t.Fatalf("expected verbatim ledger reason, got %q", rejected.Reason)
	}
	if ledger.calls() != 1 {
		t.Fatalf("submission must be attempted exactly once, got %d calls", ledger.calls())
	}
}

func TestContributeRevertedReceipt(t *testing.T) {
	ledger := newFakeLedger()
	ledger.project = activeProject(8)
	ledger.progress = 0
	ledger.balance = 10
	ledger.receiptStatus = types.ReceiptStatusFailed

	executor := NewExecutor(ledger, common.Address{}, nil, 0, nil)

	_, err := executor.Contribute(context.Background(), Request{ProjectID: 1, Amount: 3})
	var rejected *SubmissionRejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected SubmissionRejectedError, got %v", err)
	}
}

func TestContributeIndeterminateConfirmation(t *testing.T) {
	ledger := newFakeLedger()
	ledger.project = activeProject(8)
	ledger.progress = 0
	ledger.balance = 10
	ledger.rereadErr = fmt.Errorf("rpc timeout")

	executor := NewExecutor(ledger, common.Address{}, nil, 0, nil)

	result, err := executor.Contribute(context.Background(), Request{ProjectID: 1, Amount: 3})
	if !errors.Is(err, ErrConfirmationIndeterminate) {
		t.Fatalf("expected ErrConfirmationIndeterminate, got %v", err)
	}
	if result == nil || result.TxHash == "" {
		t.Fatalf("indeterminate result must still carry the tx hash")
	}
	if result.ProgressConfirmed {
		t.Fatalf("progress must not be confirmed on re-read failure")
	}
}

func TestContributeOneAtATime(t *testing.T) {
	ledger := newFakeLedger()
	ledger.project = activeProject(8)
	ledger.progress = 0
	ledger.progressAfter = 50
	ledger.balance = 10
	ledger.waitEntered = make(chan struct{})
	ledger.waitRelease = make(chan struct{})

	executor := NewExecutor(ledger, common.Address{}, nil, 0, nil)

	done := make(chan error, 1)
	go func() {
		_, err := executor.Contribute(context.Background(), Request{ProjectID: 1, Amount: 3})
		done <- err
	}()

	<-ledger.waitEntered

	_, err := executor.Contribute(context.Background(), Request{ProjectID: 1, Amount: 1})
	if !errors.Is(err, ErrAttemptInFlight) {
		t.Fatalf("expected ErrAttemptInFlight, got %v", err)
	}
	if ledger.calls() != 1 {
		t.Fatalf("second attempt must not reach the ledger, got %d calls", ledger.calls())
	}

	close(ledger.waitRelease)
	if err := <-done; err != nil {
		t.Fatalf("first attempt failed: %v", err)
	}
}
