package registry

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"offsetScope/internal/model"
)

// Event names emitted by the registry contract.
const (
	EventTokensMinted       = "TokensMinted"
	EventProjectCompensated = "ProjectCompensated"
	EventProjectCompleted   = "ProjectCompleted"
	EventProjectCreated     = "ProjectCreated"
)

// MintTopics builds the topic filter for TokensMinted scoped to one
// recipient.
func (r *Registry) MintTopics(user common.Address) [][]common.Hash {
	return [][]common.Hash{
		{r.abi.Events[EventTokensMinted].ID},
		{common.BytesToHash(user.Bytes())},
	}
}

// ContributionTopics builds the topic filter for ProjectCompensated
// scoped to one user. The first indexed argument (projectId) is left as
// a wildcard.
func (r *Registry) ContributionTopics(user common.Address) [][]common.Hash {
	return [][]common.Hash{
		{r.abi.Events[EventProjectCompensated].ID},
		nil,
		{common.BytesToHash(user.Bytes())},
	}
}

// CompletionTopics builds the unfiltered topic filter for
// ProjectCompleted.
func (r *Registry) CompletionTopics() [][]common.Hash {
	return [][]common.Hash{{r.abi.Events[EventProjectCompleted].ID}}
}

// CreationTopics builds the unfiltered topic filter for ProjectCreated.
func (r *Registry) CreationTopics() [][]common.Hash {
	return [][]common.Hash{{r.abi.Events[EventProjectCreated].ID}}
}

// DecodeMint converts a TokensMinted log into its typed payload.
func (r *Registry) DecodeMint(log types.Log) (model.MintEvent, error) {
	event := r.abi.Events[EventTokensMinted]

	var indexed struct {
		Recipient common.Address
	}
	if err := parseIndexed(&indexed, event, log); err != nil {
		return model.MintEvent{}, err
	}

	values, err := unpackNonIndexed(event, log.Data)
	if err != nil {
		return model.MintEvent{}, err
	}
	if len(values) != 2 {
		return model.MintEvent{}, fmt.Errorf("unexpected %s values: %d", event.Name, len(values))
	}

	amount, err := asUint64(values[0])
	if err != nil {
		return model.MintEvent{}, err
	}
	emissions, err := asUint64(values[1])
	if err != nil {
		return model.MintEvent{}, err
	}

	return model.MintEvent{
		Ref:       eventRef(log),
		Recipient: indexed.Recipient.Hex(),
		Amount:    amount,
		Emissions: emissions,
	}, nil
}

// DecodeContribution converts a ProjectCompensated log into its typed
// payload.
func (r *Registry) DecodeContribution(log types.Log) (model.ContributionEvent, error) {
	event := r.abi.Events[EventProjectCompensated]

	var indexed struct {
		ProjectId *big.Int
		User      common.Address
	}
	if err := parseIndexed(&indexed, event, log); err != nil {
		return model.ContributionEvent{}, err
	}

	values, err := unpackNonIndexed(event, log.Data)
	if err != nil {
		return model.ContributionEvent{}, err
	}
	if len(values) != 1 {
		return model.ContributionEvent{}, fmt.Errorf("unexpected %s values: %d", event.Name, len(values))
	}

	tokens, err := asUint64(values[0])
	if err != nil {
		return model.ContributionEvent{}, err
	}
	projectID, err := uint64FromBig(indexed.ProjectId)
	if err != nil {
		return model.ContributionEvent{}, err
	}

	return model.ContributionEvent{
		Ref:       eventRef(log),
		ProjectID: projectID,
		User:      indexed.User.Hex(),
		Tokens:    tokens,
	}, nil
}

// DecodeCompletion converts a ProjectCompleted log into its typed
// payload.
func (r *Registry) DecodeCompletion(log types.Log) (model.CompletionEvent, error) {
	event := r.abi.Events[EventProjectCompleted]

	var indexed struct {
		ProjectId *big.Int
	}
	if err := parseIndexed(&indexed, event, log); err != nil {
		return model.CompletionEvent{}, err
	}

	values, err := unpackNonIndexed(event, log.Data)
	if err != nil {
		return model.CompletionEvent{}, err
	}
	if len(values) != 1 {
		return model.CompletionEvent{}, fmt.Errorf("unexpected %s values: %d", event.Name, len(values))
	}

	total, err := asUint64(values[0])
	if err != nil {
		return model.CompletionEvent{}, err
	}
	projectID, err := uint64FromBig(indexed.ProjectId)
	if err != nil {
		return model.CompletionEvent{}, err
	}

	return model.CompletionEvent{
		Ref:         eventRef(log),
		ProjectID:   projectID,
		TotalTokens: total,
	}, nil
}

// DecodeCreation converts a ProjectCreated log into its typed payload.
func (r *Registry) DecodeCreation(log types.Log) (model.CreationEvent, error) {
	event := r.abi.Events[EventProjectCreated]

	var indexed struct {
		ProjectId *big.Int
	}
	if err := parseIndexed(&indexed, event, log); err != nil {
		return model.CreationEvent{}, err
	}

	values, err := unpackNonIndexed(event, log.Data)
	if err != nil {
		return model.CreationEvent{}, err
	}
	if len(values) != 2 {
		return model.CreationEvent{}, fmt.Errorf("unexpected %s values: %d", event.Name, len(values))
	}

	name, ok := values[0].(string)
	if !ok {
		return model.CreationEvent{}, fmt.Errorf("%s name is not a string", event.Name)
	}
	owner, err := asAddress(values[1])
	if err != nil {
		return model.CreationEvent{}, err
	}
	projectID, err := uint64FromBig(indexed.ProjectId)
	if err != nil {
		return model.CreationEvent{}, err
	}

	return model.CreationEvent{
		Ref:       eventRef(log),
		ProjectID: projectID,
		Name:      name,
		Owner:     owner.Hex(),
	}, nil
}

func eventRef(log types.Log) model.EventRef {
	return model.EventRef{
		BlockNumber: log.BlockNumber,
		TxHash:      log.TxHash.Hex(),
		LogIndex:    uint64(log.Index),
	}
}

func parseIndexed(out interface{}, event abi.Event, log types.Log) error {
	indexed := indexedArguments(event.Inputs)
	if len(log.Topics) != len(indexed)+1 {
		return fmt.Errorf("%s: expected %d topics, got %d", event.Name, len(indexed)+1, len(log.Topics))
	}
	if err := abi.ParseTopics(out, indexed, log.Topics[1:]); err != nil {
		return fmt.Errorf("parse %s topics: %w", event.Name, err)
	}
	return nil
}

func indexedArguments(args abi.Arguments) abi.Arguments {
	indexed := make(abi.Arguments, 0, len(args))
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return indexed
}

func unpackNonIndexed(event abi.Event, data []byte) ([]interface{}, error) {
	values, err := event.Inputs.NonIndexed().Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", event.Name, err)
	}
	return values, nil
}

func asUint64(value interface{}) (uint64, error) {
	b, ok := value.(*big.Int)
	if !ok {
		return 0, fmt.Errorf("value is not a big int: %T", value)
	}
	return uint64FromBig(b)
}

func asAddress(value interface{}) (common.Address, error) {
	addr, ok := value.(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("value is not an address: %T", value)
	}
	return addr, nil
}
