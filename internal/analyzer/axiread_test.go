package analyzer

import (
	"testing"

	"github.com/busperf/busperf/internal/diag"
	"github.com/busperf/busperf/internal/period"
	"github.com/busperf/busperf/internal/trace"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func axiLiteClock() trace.MemChangeStream {
	return trace.MemChangeStream{
		{Time: 2, Value: trace.Bit(1)},
		{Time: 4, Value: trace.Bit(1)},
		{Time: 6, Value: trace.Bit(1)},
		{Time: 8, Value: trace.Bit(1)},
		{Time: 10, Value: trace.Bit(1)},
		{Time: 12, Value: trace.Bit(1)},
	}
}

// TestAXIReadAnalyzer_Lite reconstructs a single read transaction: AR fires
// at clock edge 2, R fires at clock edge 6, both single-beat handshakes.
func TestAXIReadAnalyzer_Lite(t *testing.T) {
	clk := axiLiteClock()
	reset := trace.MemChangeStream{{Time: 0, Value: trace.Bit(0)}}
	table := trace.TimeTable{0, 1, 2, 3, 4, 5, 6, 7}

	arReady := trace.MemChangeStream{{Time: 0, Value: trace.Bit(1)}}
	arValid := trace.MemChangeStream{{Time: 0, Value: trace.Bit(1)}, {Time: 3, Value: trace.Bit(0)}}

	rReady := trace.MemChangeStream{{Time: 0, Value: trace.Bit(1)}}
	rValid := trace.MemChangeStream{{Time: 0, Value: trace.Bit(0)}, {Time: 5, Value: trace.Bit(1)}, {Time: 9, Value: trace.Bit(0)}}

	resp := trace.MemChangeStream{{Time: 0, Value: trace.Bits(0, 0)}}

	a := &AXIReadAnalyzer{
		Name: "axi0",
		ClockReset: ClockReset{
			Clock:           clk,
			Reset:           reset,
			ResetActiveHigh: true,
			TimeTable:       table,
		},
		AR:           AXIChannel{Valid: arValid, Ready: arReady},
		R:            AXIChannel{Valid: rValid, Ready: rReady},
		Resp:         resp,
		WindowLength: 4,
		XRate:        decimal.NewFromFloat(0.5),
		YRate:        decimal.NewFromFloat(0.1),
		Diag:         diag.NopSink{},
	}

	usage, err := a.Run()
	require.NoError(t, err)
	require.Len(t, usage.CmdToCompletion, 1)
	assert.Equal(t, period.New(2, 6, 2), usage.CmdToCompletion[0])
	assert.Equal(t, 1, usage.CorrectNum)
	assert.Empty(t, usage.Errors)
}

// axiFullClock is a longer clock trace for the full-mode (multi-id)
// fixtures below, which need more beats than the lite single-transaction
// case.
func axiFullClock() trace.MemChangeStream {
	cs := trace.MemChangeStream{}
	for t := uint64(2); t <= 20; t += 2 {
		cs = append(cs, trace.Change{Time: trace.TimeIndex(t), Value: trace.Bit(1)})
	}
	return cs
}

// TestAXIReadAnalyzer_Full_MultiID_OutOfOrderCompletion reproduces spec §8's
// S6 scenario: two AR commands are outstanding at once (ids "00" and "01"),
// and their R responses arrive out of order relative to issue order. This
// exercises two things the lite single-queue path can't: per-id FIFO
// correlation (so the later-issued id's response doesn't steal the
// earlier-issued id's slot), and next_start being captured at AR-push time
// rather than recomputed when each transaction happens to complete.
//
// AR id "00" fires at t=2, AR id "01" fires at t=6. R for id "01" fires
// first at t=10 (completing the second-issued command first), and R for
// id "00" fires at t=14. Because id "00"'s next_start is captured when its
// AR fires (t=2), it is 6 (the next AR, id "01") even though by the time
// id "00" actually completes (t=14) no AR has fired since t=6 — a
// completion-time recomputation would wrongly see no later AR and fall
// back to the end of analysis instead.
func TestAXIReadAnalyzer_Full_MultiID_OutOfOrderCompletion(t *testing.T) {
	clk := axiFullClock()
	reset := trace.MemChangeStream{{Time: 0, Value: trace.Bit(0)}}
	table := make(trace.TimeTable, 21)
	for i := range table {
		table[i] = uint64(i)
	}

	arReady := trace.MemChangeStream{{Time: 0, Value: trace.Bit(1)}}
	arValid := trace.MemChangeStream{
		{Time: 0, Value: trace.Bit(1)}, {Time: 3, Value: trace.Bit(0)},
		{Time: 5, Value: trace.Bit(1)}, {Time: 7, Value: trace.Bit(0)},
	}

	rReady := trace.MemChangeStream{{Time: 0, Value: trace.Bit(1)}}
	rValid := trace.MemChangeStream{
		{Time: 0, Value: trace.Bit(0)},
		{Time: 9, Value: trace.Bit(1)}, {Time: 11, Value: trace.Bit(0)},
		{Time: 13, Value: trace.Bit(1)}, {Time: 15, Value: trace.Bit(0)},
	}

	id := trace.MemChangeStream{
		{Time: 0, Value: trace.Bits(0, 0)},
		{Time: 5, Value: trace.Bits(0, 1)},
	}
	rid := trace.MemChangeStream{
		{Time: 0, Value: trace.Bits(0, 1)},
		{Time: 12, Value: trace.Bits(0, 0)},
	}
	resp := trace.MemChangeStream{{Time: 0, Value: trace.Bits(0, 0)}}

	a := &AXIReadAnalyzer{
		Name: "axi0",
		ClockReset: ClockReset{
			Clock:           clk,
			Reset:           reset,
			ResetActiveHigh: true,
			TimeTable:       table,
		},
		AR:           AXIChannel{Valid: arValid, Ready: arReady},
		R:            AXIChannel{Valid: rValid, Ready: rReady},
		ID:           id,
		RID:          rid,
		Resp:         resp,
		WindowLength: 4,
		XRate:        decimal.NewFromFloat(0.5),
		YRate:        decimal.NewFromFloat(0.1),
		Diag:         diag.NopSink{},
	}

	usage, err := a.Run()
	require.NoError(t, err)
	require.Len(t, usage.CmdToCompletion, 2)
	require.Len(t, usage.TransactionDelays, 2)

	// id "01" (issued second) completes first.
	assert.Equal(t, period.New(6, 10, 2), usage.CmdToCompletion[0])
	assert.Equal(t, period.New(10, 20, 2), usage.TransactionDelays[0])

	// id "00" (issued first) completes last, but its next_start was
	// captured when it was pushed, so it still points at the "01" AR.
	assert.Equal(t, period.New(2, 14, 2), usage.CmdToCompletion[1])
	assert.Equal(t, period.New(14, 6, 2), usage.TransactionDelays[1])

	assert.Equal(t, 2, usage.CorrectNum)
	assert.Empty(t, usage.Errors)
}

// TestAXIReadAnalyzer_S6_Literal reproduces spec §8's S6 fixture verbatim:
// AR id=A at t=10 with beats at 20,30,40 (last at 40, resp=00), overlapping
// AR id=B at t=15 with beats at 25,45 (last at 45, resp=10). Expects
// transactions (10,20,40,40) and (15,25,45,45), errors containing 15 (B's
// resp doesn't end in 00/01), and correct_count=1.
func TestAXIReadAnalyzer_S6_Literal(t *testing.T) {
	clk := trace.MemChangeStream{}
	for _, t := range []uint64{10, 15, 20, 25, 30, 40, 45} {
		clk = append(clk, trace.Change{Time: trace.TimeIndex(t), Value: trace.Bit(1)})
	}
	reset := trace.MemChangeStream{{Time: 0, Value: trace.Bit(0)}}
	table := make(trace.TimeTable, 47)
	for i := range table {
		table[i] = uint64(i)
	}

	arReady := trace.MemChangeStream{{Time: 0, Value: trace.Bit(1)}}
	arValid := trace.MemChangeStream{
		{Time: 0, Value: trace.Bit(1)}, {Time: 11, Value: trace.Bit(0)},
		{Time: 13, Value: trace.Bit(1)}, {Time: 16, Value: trace.Bit(0)},
	}

	rReady := trace.MemChangeStream{{Time: 0, Value: trace.Bit(1)}}
	rValid := trace.MemChangeStream{
		{Time: 0, Value: trace.Bit(0)},
		{Time: 19, Value: trace.Bit(1)}, {Time: 21, Value: trace.Bit(0)},
		{Time: 24, Value: trace.Bit(1)}, {Time: 26, Value: trace.Bit(0)},
		{Time: 29, Value: trace.Bit(1)}, {Time: 31, Value: trace.Bit(0)},
		{Time: 39, Value: trace.Bit(1)}, {Time: 41, Value: trace.Bit(0)},
		{Time: 44, Value: trace.Bit(1)}, {Time: 46, Value: trace.Bit(0)},
	}

	arID := trace.MemChangeStream{
		{Time: 0, Value: trace.Bits(0, 0)},  // A
		{Time: 12, Value: trace.Bits(0, 1)}, // B
	}
	rID := trace.MemChangeStream{
		{Time: 0, Value: trace.Bits(0, 0)},  // A, samples R@20
		{Time: 21, Value: trace.Bits(0, 1)}, // B, samples R@25
		{Time: 26, Value: trace.Bits(0, 0)}, // A, samples R@30 and R@40
		{Time: 41, Value: trace.Bits(0, 1)}, // B, samples R@45
	}
	last := trace.MemChangeStream{
		{Time: 0, Value: trace.Bit(0)},
		{Time: 39, Value: trace.Bit(1)}, // last beat of both bursts: R@40 and R@45
	}
	resp := trace.MemChangeStream{
		{Time: 0, Value: trace.Bits(0, 0)},  // id A's completing resp: 00 (correct)
		{Time: 41, Value: trace.Bits(1, 0)}, // id B's completing resp: 10 (incorrect)
	}

	a := &AXIReadAnalyzer{
		Name: "axi0",
		ClockReset: ClockReset{
			Clock:           clk,
			Reset:           reset,
			ResetActiveHigh: true,
			TimeTable:       table,
		},
		AR:           AXIChannel{Valid: arValid, Ready: arReady},
		R:            AXIChannel{Valid: rValid, Ready: rReady},
		ID:           arID,
		RID:          rID,
		Last:         last,
		Resp:         resp,
		WindowLength: 4,
		XRate:        decimal.NewFromFloat(0.5),
		YRate:        decimal.NewFromFloat(0.1),
		Diag:         diag.NopSink{},
	}

	usage, err := a.Run()
	require.NoError(t, err)
	require.Len(t, usage.CmdToCompletion, 2)

	assert.Equal(t, period.New(10, 40, 2), usage.CmdToCompletion[0])
	assert.Equal(t, period.New(10, 20, 2), usage.CmdToFirstData[0])
	assert.Equal(t, period.New(40, 40, 2), usage.LastDataToCompletion[0])

	assert.Equal(t, period.New(15, 45, 2), usage.CmdToCompletion[1])
	assert.Equal(t, period.New(15, 25, 2), usage.CmdToFirstData[1])
	assert.Equal(t, period.New(45, 45, 2), usage.LastDataToCompletion[1])

	assert.Equal(t, 1, usage.CorrectNum)
	assert.Equal(t, []period.AbsTime{15}, usage.Errors)
}

func TestAXIReadAnalyzer_ResponseWithoutCommandWarns(t *testing.T) {
	clk := axiLiteClock()
	reset := trace.MemChangeStream{{Time: 0, Value: trace.Bit(0)}}
	table := trace.TimeTable{0, 1, 2, 3, 4, 5, 6, 7}

	arReady := trace.MemChangeStream{{Time: 0, Value: trace.Bit(1)}}
	arValid := trace.MemChangeStream{{Time: 0, Value: trace.Bit(0)}}

	rReady := trace.MemChangeStream{{Time: 0, Value: trace.Bit(1)}}
	rValid := trace.MemChangeStream{{Time: 0, Value: trace.Bit(0)}, {Time: 5, Value: trace.Bit(1)}, {Time: 9, Value: trace.Bit(0)}}

	a := &AXIReadAnalyzer{
		Name: "axi0",
		ClockReset: ClockReset{
			Clock:           clk,
			Reset:           reset,
			ResetActiveHigh: true,
			TimeTable:       table,
		},
		AR:           AXIChannel{Valid: arValid, Ready: arReady},
		R:            AXIChannel{Valid: rValid, Ready: rReady},
		WindowLength: 4,
		XRate:        decimal.NewFromFloat(0.5),
		YRate:        decimal.NewFromFloat(0.1),
		Diag:         diag.NopSink{},
	}

	usage, err := a.Run()
	require.NoError(t, err)
	assert.Empty(t, usage.CmdToCompletion)
}
