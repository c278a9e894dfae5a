//go:build integration

package integration

import (
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/encodeous/ripsim/state"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestOptimalConvergence(t *testing.T) {
	defer goleak.VerifyNone(t)

	topo, err := state.GenerateTopology(4, rand.New(rand.NewPCG(11, 0)))
	require.NoError(t, err)
	expected := ShortestPaths(topo)

	vh := NewHarness(topo, state.SimCfg{TickDelay: 20 * time.Millisecond, MaxTicks: 40, Seed: 11})
	errs := vh.Start()
	require.NoError(t, <-errs)

	for _, id := range topo.Ids() {
		last, ok := vh.Recorder.Last(id)
		require.True(t, ok)
		if diff := cmp.Diff(expected[id], Metrics(last)); diff != "" {
			t.Errorf("%s did not converge to shortest paths (-want +got):\n%s", id, diff)
		}
	}
}

func TestConvergenceSignal(t *testing.T) {
	defer goleak.VerifyNone(t)

	// a -1- b -1- c, a -10- c
	topo, err := state.NewTopology(state.TopologyCfg{
		Routers: []state.RouterCfg{{Id: "10.0.1.1"}, {Id: "10.0.2.1"}, {Id: "10.0.3.1"}},
		Links: []state.LinkCfg{
			{From: "10.0.1.1", To: "10.0.2.1", Weight: 1},
			{From: "10.0.2.1", To: "10.0.3.1", Weight: 1},
			{From: "10.0.1.1", To: "10.0.3.1", Weight: 10},
		},
	})
	require.NoError(t, err)

	converged := NewSignal()
	var once sync.Once
	vh := NewHarness(topo, state.SimCfg{TickDelay: 20 * time.Millisecond, Seed: 1})
	vh.Watchers = append(vh.Watchers, Watcher{Check: func(snap state.TableSnapshot) {
		if snap.Node != "10.0.1.1" {
			return
		}
		for _, e := range snap.Entries {
			if e.Dest == "10.0.3.1" && e.Metric == 2 && e.NextHop == "10.0.2.1" {
				once.Do(converged.Trigger)
			}
		}
	}})
	errs := vh.Start()

	select {
	case <-converged:
		t.Log("Reached optimal!")
	case <-time.After(10 * time.Second):
		t.Error("Timed out waiting for convergence")
	case err := <-errs:
		t.Fatal(err)
	}
	vh.Stop()
	assert.Error(t, <-errs)
}

func TestLinkCutExpiresNeighbour(t *testing.T) {
	defer goleak.VerifyNone(t)

	a, b, c := state.RouterAddress(1), state.RouterAddress(2), state.RouterAddress(3)
	topo, err := state.NewTopology(state.TopologyCfg{
		Routers: []state.RouterCfg{{Id: a}, {Id: b}, {Id: c}},
		Links: []state.LinkCfg{
			{From: a, To: b, Weight: 1},
			{From: b, To: c, Weight: 1},
		},
	})
	require.NoError(t, err)

	vh := NewHarness(topo, state.SimCfg{TickDelay: 20 * time.Millisecond, Seed: 1})
	errs := vh.Start()
	defer func() {
		vh.Stop()
		<-errs
	}()

	require.Eventually(t, func() bool {
		m, err := vh.Metric(a, c)
		return err == nil && m == 2
	}, 10*time.Second, 20*time.Millisecond)

	// b goes silent towards a
	vh.CutLink(b, a)
	require.Eventually(t, func() bool {
		m, err := vh.Metric(a, b)
		return err == nil && m == state.INF
	}, 10*time.Second, 20*time.Millisecond)

	// routes through b are not poisoned
	m, err := vh.Metric(a, c)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), m)

	// b still hears from a, so its view is unchanged
	m, err = vh.Metric(b, a)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), m)
}

func TestFailureCascade(t *testing.T) {
	defer goleak.VerifyNone(t)

	topo, err := state.GenerateTopology(2, rand.New(rand.NewPCG(5, 0)))
	require.NoError(t, err)

	cfg := state.SimCfg{
		TickDelay:          10 * time.Millisecond,
		FailureEnabled:     true,
		FailureProbability: 0.3,
		Seed:               5,
	}
	vh := NewHarness(topo, cfg)
	errs := vh.Start()
	select {
	case err := <-errs:
		require.NoError(t, err)
	case <-time.After(30 * time.Second):
		vh.Stop()
		t.Fatal("routers did not all fail")
	}

	assert.True(t, vh.Result.AllFailed())
	assert.Equal(t, 4, vh.Recorder.Failures())
	for _, id := range topo.Ids() {
		tick, ok := vh.Recorder.Failure(id)
		require.True(t, ok)
		// one table per tick up to and including the failing one
		assert.Len(t, vh.Recorder.Tables(id), tick+1)
	}
}
