package metrics

import "testing"

func TestReadiness(t *testing.T) {
	t.Cleanup(func() { SetReadinessFunc(nil) })
	if !IsReady() {
		t.Fatalf("unset readiness must report ready")
	}
	SetReadinessFunc(func() bool { return false })
	if IsReady() {
		t.Fatalf("readiness func ignored")
	}
}

func TestLocalMirror(t *testing.T) {
	before := Snap()
	IncSamples()
	IncInterrupt("rx")
	IncBusError("stuff")
	IncError(ErrMap)
	SetErrorCounters(7, 200, 96)
	SetStatusBit("bus_off", true)
	after := Snap()
	if after.Samples != before.Samples+1 || after.Interrupts != before.Interrupts+1 ||
		after.BusErrors != before.BusErrors+1 || after.Errors != before.Errors+1 {
		t.Fatalf("counters before=%+v after=%+v", before, after)
	}
	if after.RxErr != 7 || after.TxErr != 200 || !after.BusOff {
		t.Fatalf("gauges %+v", after)
	}
	SetStatusBit("bus_off", false)
	if Snap().BusOff {
		t.Fatalf("bus_off not cleared")
	}
}
