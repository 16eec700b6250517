package chain

import (
	"bytes"
	"embed"
	"fmt"

	"lendex/core"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

//go:embed abi/*.json
var abiFiles embed.FS

var eventFiles = map[core.ContractKind]string{
	core.ContractSeniorPool:     "abi/senior_pool.json",
	core.ContractStakingRewards: "abi/staking_rewards.json",
	core.ContractConfig:         "abi/config.json",
	core.ContractFactory:        "abi/factory.json",
	core.ContractLoan:           "abi/loan.json",
}

func loadABI(name string) (abi.ABI, error) {
	data, err := abiFiles.ReadFile(name)
	if err != nil {
		return abi.ABI{}, err
	}

	parsed, err := abi.JSON(bytes.NewReader(data))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("parse %s: %w", name, err)
	}

	return parsed, nil
}

// MethodsABI view methods of every contract the indexer reads
func MethodsABI() (abi.ABI, error) {
	return loadABI("abi/methods.json")
}

// EventSignatures topic0 to event, per contract kind
func EventSignatures() (map[core.ContractKind]map[common.Hash]*abi.Event, error) {
	sigs := make(map[core.ContractKind]map[common.Hash]*abi.Event, len(eventFiles))
	for kind, file := range eventFiles {
		parsed, err := loadABI(file)
		if err != nil {
			return nil, err
		}

		events := make(map[common.Hash]*abi.Event, len(parsed.Events))
		for name := range parsed.Events {
			event := parsed.Events[name]
			events[event.ID] = &event
		}

		sigs[kind] = events
	}

	return sigs, nil
}
