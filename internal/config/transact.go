package config

import (
	"time"

	"github.com/spf13/pflag"
)

// Contribute holds configuration for the contribute command.
type Contribute struct {
	RPCURL          string
	RegistryAddress string
	PrivateKey      string
	ProjectID       uint64
	Amount          uint64
	ConfirmTimeout  time.Duration
	LogLevel        string
}

// LoadContribute merges config file, environment variables, and flags.
func LoadContribute(cfgFile string, flags *pflag.FlagSet) (Contribute, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return Contribute{}, err
	}

	v.SetDefault("confirm-timeout", 2*time.Minute)
	v.SetDefault("log-level", "info")

	return Contribute{
		RPCURL:          v.GetString("rpc"),
		RegistryAddress: v.GetString("registry"),
		PrivateKey:      v.GetString("private-key"),
		ProjectID:       v.GetUint64("project"),
		Amount:          v.GetUint64("amount"),
		ConfirmTimeout:  v.GetDuration("confirm-timeout"),
		LogLevel:        v.GetString("log-level"),
	}, nil
}

// Buy holds configuration for the buy command.
type Buy struct {
	RPCURL          string
	RegistryAddress string
	PrivateKey      string
	Amount          uint64
	ConfirmTimeout  time.Duration
	LogLevel        string
}

// LoadBuy merges config file, environment variables, and flags.
func LoadBuy(cfgFile string, flags *pflag.FlagSet) (Buy, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return Buy{}, err
	}

	v.SetDefault("confirm-timeout", 2*time.Minute)
	v.SetDefault("log-level", "info")

	return Buy{
		RPCURL:          v.GetString("rpc"),
		RegistryAddress: v.GetString("registry"),
		PrivateKey:      v.GetString("private-key"),
		Amount:          v.GetUint64("amount"),
		ConfirmTimeout:  v.GetDuration("confirm-timeout"),
		LogLevel:        v.GetString("log-level"),
	}, nil
}

// CreateProject holds configuration for the create-project command.
type CreateProject struct {
	RPCURL          string
	RegistryAddress string
	PrivateKey      string
	Name            string
	Description     string
	Location        string
	RequiredTokens  uint64
	CO2Reduction    uint64
	ConfirmTimeout  time.Duration
	LogLevel        string
}

// LoadCreateProject merges config file, environment variables, and flags.
func LoadCreateProject(cfgFile string, flags *pflag.FlagSet) (CreateProject, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return CreateProject{}, err
	}

	v.SetDefault("location", "Unknown")
	v.SetDefault("confirm-timeout", 2*time.Minute)
	v.SetDefault("log-level", "info")

	return CreateProject{
		RPCURL:          v.GetString("rpc"),
		RegistryAddress: v.GetString("registry"),
		PrivateKey:      v.GetString("private-key"),
		Name:            v.GetString("name"),
		Description:     v.GetString("description"),
		Location:        v.GetString("location"),
		RequiredTokens:  v.GetUint64("required-tokens"),
		CO2Reduction:    v.GetUint64("co2-reduction"),
		ConfirmTimeout:  v.GetDuration("confirm-timeout"),
		LogLevel:        v.GetString("log-level"),
	}, nil
}

// Footprint holds configuration for the footprint command.
type Footprint struct {
	RPCURL          string
	RegistryAddress string
	PrivateKey      string
	ElectricityKWh  float64
	CarKm           float64
	Flights         float64
	MeatKgPerWeek   float64
	Record          bool
	ConfirmTimeout  time.Duration
	LogLevel        string
}

// LoadFootprint merges config file, environment variables, and flags.
func LoadFootprint(cfgFile string, flags *pflag.FlagSet) (Footprint, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return Footprint{}, err
	}

	v.SetDefault("confirm-timeout", 2*time.Minute)
	v.SetDefault("log-level", "info")

	return Footprint{
		RPCURL:          v.GetString("rpc"),
		RegistryAddress: v.GetString("registry"),
		PrivateKey:      v.GetString("private-key"),
		ElectricityKWh:  v.GetFloat64("electricity"),
		CarKm:           v.GetFloat64("car-km"),
		Flights:         v.GetFloat64("flights"),
		MeatKgPerWeek:   v.GetFloat64("meat"),
		Record:          v.GetBool("record"),
		ConfirmTimeout:  v.GetDuration("confirm-timeout"),
		LogLevel:        v.GetString("log-level"),
	}, nil
}
