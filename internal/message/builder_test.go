package message

import "testing"

func TestBuilderBolusSetsOpcodeAndParams(t *testing.T) {
	req := NewBuilder().Bolus(1.25).Build()
	if req.Opcode != OpBolus {
		t.Fatalf("expected OpBolus, got %v", req.Opcode)
	}
	params, ok := req.Params.(BolusParams)
	if !ok {
		t.Fatalf("expected BolusParams, got %T", req.Params)
	}
	if params.AmountUnits != 1.25 {
		t.Fatalf("expected amount 1.25, got %v", params.AmountUnits)
	}
}

func TestBuilderSetupPodCarriesAllFields(t *testing.T) {
	date := PodDate{Year: 2026, Month: 1, Day: 2, Hour: 3, Minute: 4, Second: 5}
	req := NewBuilder().SetupPod(111, 222, 0xAB, date).Build()
	params, ok := req.Params.(SetupPodParams)
	if !ok {
		t.Fatalf("expected SetupPodParams, got %T", req.Params)
	}
	if params.Lot != 111 || params.Serial != 222 || params.RadioAddress != 0xAB {
		t.Fatalf("unexpected params: %+v", params)
	}
	if params.PodDate != date {
		t.Fatalf("expected date to round-trip, got %+v", params.PodDate)
	}
}

func TestBuilderCancelBolusHasNoParams(t *testing.T) {
	req := NewBuilder().CancelBolus().Build()
	if req.Opcode != OpCancelBolus {
		t.Fatalf("expected OpCancelBolus, got %v", req.Opcode)
	}
}

func TestBuilderReuseOverwritesPriorCall(t *testing.T) {
	b := NewBuilder()
	b.Bolus(1.0)
	req := b.CancelBolus().Build()
	if req.Opcode != OpCancelBolus {
		t.Fatalf("expected the last call to win, got %v", req.Opcode)
	}
}
