package footprint

import "testing"

func TestEstimate(t *testing.T) {
	tests := []struct {
		name       string
		in         Consumption
		wantCO2    float64
		wantTokens uint64
	}{
		{
			name:       "electricity only",
			in:         Consumption{ElectricityKWh: 250},
			wantCO2:    100,
			wantTokens: 1,
		},
		{
			name:       "mixed profile",
			in:         Consumption{ElectricityKWh: 300, CarKm: 500, Flights: 2, MeatKgPerWeek: 1},
			wantCO2:    300*0.4 + 500*0.2 + 2*200 + 1*50,
			wantTokens: 7,
		},
		{
			name:       "tokens round up",
			in:         Consumption{ElectricityKWh: 255},
			wantCO2:    102,
			wantTokens: 2,
		},
		{
			name: "zero profile",
			in:   Consumption{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Estimate()
			if got.CO2Kg != tt.wantCO2 {
				t.Fatalf("CO2Kg = %v, want %v", got.CO2Kg, tt.wantCO2)
			}
			if got.TokensNeeded != tt.wantTokens {
				t.Fatalf("TokensNeeded = %d, want %d", got.TokensNeeded, tt.wantTokens)
			}
		})
	}
}
