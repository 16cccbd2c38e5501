package registry

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"offsetScope/internal/chain"
	"offsetScope/internal/model"
)

// Registry is the carbon registry contract wrapper. Reads go through
// eth_call, writes through signed transactions. The contract remains
// the single source of truth for balances and project state.
type Registry struct {
	addr   common.Address
	abi    abi.ABI
	bound  *bind.BoundContract
	client *chain.Client
}

// New binds the registry contract at the given address.
func New(address string, client *chain.Client) (*Registry, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid registry address: %s", address)
	}

	parsed, err := RegistryABI()
	if err != nil {
		return nil, err
	}

	addr := common.HexToAddress(address)
	backend := client.Eth()
	return &Registry{
		addr:   addr,
		abi:    parsed,
		bound:  bind.NewBoundContract(addr, parsed, backend, backend, backend),
		client: client,
	}, nil
}

// Address returns the contract address.
func (r *Registry) Address() common.Address {
	return r.addr
}

// BalanceOf returns the account's token balance.
func (r *Registry) BalanceOf(ctx context.Context, account common.Address) (uint64, error) {
	var out []interface{}
	if err := r.bound.Call(&bind.CallOpts{Context: ctx}, &out, "balanceOf", account); err != nil {
		return 0, fmt.Errorf("%w: balanceOf: %w", chain.ErrLedgerUnavailable, err)
	}
	return uint64FromBig(out[0].(*big.Int))
}

// ProjectCounter returns the highest assigned project id.
func (r *Registry) ProjectCounter(ctx context.Context) (uint64, error) {
	var out []interface{}
	if err := r.bound.Call(&bind.CallOpts{Context: ctx}, &out, "projectCounter"); err != nil {
		return 0, fmt.Errorf("%w: projectCounter: %w", chain.ErrLedgerUnavailable, err)
	}
	return uint64FromBig(out[0].(*big.Int))
}

// Project reads one project definition. Progress is not part of the
// definition and must be fetched via ProjectProgress.
func (r *Registry) Project(ctx context.Context, id uint64) (model.Project, error) {
	var out []interface{}
	if err := r.bound.Call(&bind.CallOpts{Context: ctx}, &out, "projects", new(big.Int).SetUint64(id)); err != nil {
		return model.Project{}, fmt.Errorf("%w: projects(%d): %w", chain.ErrLedgerUnavailable, id, err)
	}
	if len(out) != 8 {
		return model.Project{}, fmt.Errorf("projects(%d): unexpected output arity %d", id, len(out))
	}

	required, err := uint64FromBig(out[3].(*big.Int))
	if err != nil {
		return model.Project{}, fmt.Errorf("projects(%d) requiredTokens: %w", id, err)
	}
	co2, err := uint64FromBig(out[4].(*big.Int))
	if err != nil {
		return model.Project{}, fmt.Errorf("projects(%d) co2Reduction: %w", id, err)
	}
	contributed, err := uint64FromBig(out[5].(*big.Int))
	if err != nil {
		return model.Project{}, fmt.Errorf("projects(%d) totalContributed: %w", id, err)
	}

	return model.Project{
		ID:               id,
		Name:             out[0].(string),
		Description:      out[1].(string),
		Location:         out[2].(string),
		RequiredTokens:   required,
		CO2Reduction:     co2,
		TotalContributed: contributed,
		Active:           out[6].(bool),
		Owner:            out[7].(common.Address).Hex(),
	}, nil
}

// ProjectProgress returns the funding completion percentage (0-100).
func (r *Registry) ProjectProgress(ctx context.Context, id uint64) (uint64, error) {
	var out []interface{}
	if err := r.bound.Call(&bind.CallOpts{Context: ctx}, &out, "getProjectProgress", new(big.Int).SetUint64(id)); err != nil {
		return 0, fmt.Errorf("%w: getProjectProgress(%d): %w", chain.ErrLedgerUnavailable, id, err)
	}
	return uint64FromBig(out[0].(*big.Int))
}

// TokenPrice returns the unit token price in wei.
func (r *Registry) TokenPrice(ctx context.Context) (*big.Int, error) {
	var out []interface{}
	if err := r.bound.Call(&bind.CallOpts{Context: ctx}, &out, "TOKEN_PRICE"); err != nil {
		return nil, fmt.Errorf("%w: TOKEN_PRICE: %w", chain.ErrLedgerUnavailable, err)
	}
	return out[0].(*big.Int), nil
}

// TokensForCO2 returns the token amount needed to compensate the given
// CO2 quantity, as computed by the contract.
func (r *Registry) TokensForCO2(ctx context.Context, co2Kg uint64) (uint64, error) {
	var out []interface{}
	if err := r.bound.Call(&bind.CallOpts{Context: ctx}, &out, "calculateEmissions", new(big.Int).SetUint64(co2Kg)); err != nil {
		return 0, fmt.Errorf("%w: calculateEmissions: %w", chain.ErrLedgerUnavailable, err)
	}
	return uint64FromBig(out[0].(*big.Int))
}

// BuyTokens submits a payable token purchase. totalPrice is attached as
// the transaction value.
func (r *Registry) BuyTokens(opts *bind.TransactOpts, amount uint64, totalPrice *big.Int) (*types.Transaction, error) {
	withValue := *opts
	withValue.Value = totalPrice
	return r.bound.Transact(&withValue, "buyTokens", new(big.Int).SetUint64(amount))
}

// CompensateProject submits a token contribution toward a project.
func (r *Registry) CompensateProject(opts *bind.TransactOpts, projectID, amount uint64) (*types.Transaction, error) {
	return r.bound.Transact(opts, "compensateProject", new(big.Int).SetUint64(projectID), new(big.Int).SetUint64(amount))
}

// CreateProject submits a new project definition.
func (r *Registry) CreateProject(opts *bind.TransactOpts, name, description, location string, requiredTokens, co2Reduction uint64) (*types.Transaction, error) {
	return r.bound.Transact(opts, "createProject", name, description, location,
		new(big.Int).SetUint64(requiredTokens), new(big.Int).SetUint64(co2Reduction))
}

// RecordEmissions submits self-reported consumption figures.
func (r *Registry) RecordEmissions(opts *bind.TransactOpts, electricityKWh, carKm, flights, meatKg uint64) (*types.Transaction, error) {
	return r.bound.Transact(opts, "recordEmissions",
		new(big.Int).SetUint64(electricityKWh), new(big.Int).SetUint64(carKm),
		new(big.Int).SetUint64(flights), new(big.Int).SetUint64(meatKg))
}

// WaitMined blocks until the transaction is included and returns its
// receipt.
func (r *Registry) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	return bind.WaitMined(ctx, r.client.Eth(), tx)
}

func uint64FromBig(value *big.Int) (uint64, error) {
	if value == nil {
		return 0, fmt.Errorf("nil big int")
	}
	if !value.IsUint64() {
		return 0, fmt.Errorf("value does not fit in uint64: %s", value)
	}
	return value.Uint64(), nil
}
