//go:build integration

package integration

import (
	"testing"
	"time"

	"github.com/encodeous/strand/protocol"
	"github.com/encodeous/strand/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// a and b first reach each other through their parent, then prefer a direct peering once it exists
func TestOptimalConvergence(t *testing.T) {
	defer goleak.VerifyNone(t)

	vh := &VirtualHarness{}
	vh.NewNode("g.root")
	vh.NewNode("g.root.a")
	vh.NewNode("g.root.b")
	vh.AddLink("g.root", "g.root.a", state.RelationChild)
	vh.AddLink("g.root", "g.root.b", state.RelationChild)
	vh.AddWallet("g.root.a", "alice")
	vh.AddWallet("g.root.b", "bob")
	errs := vh.Start()
	defer vh.Stop()

	received, err := vh.Fulfill("g.root.b", "bob", fulfillment)
	require.NoError(t, err)

	conv1 := NewSignal() // first stage convergence: a -> root -> b
	conv2 := NewSignal() // second stage convergence: a -> b
	success := NewSignal()

	go func() {
		for {
			select {
			case <-vh.Context.Done():
				return
			case <-time.After(50 * time.Millisecond):
			}
			if vh.RoutedVia("g.root.a", "g.root.b", "g.root") {
				conv1.Trigger()
			}
			if conv1.Triggered() && vh.RoutedVia("g.root.a", "g.root.b", "g.root.b") {
				conv2.Trigger()
				res, err := vh.Pay("g.root.a", "alice", prepare("g.root.b.bob.direct"))
				if err == nil {
					if _, ok := res.(*protocol.Fulfill); ok {
						success.Trigger()
						return
					}
				}
			}
		}
	}()

	select {
	case <-conv1:
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for the hierarchy to converge")
	}
	res, err := vh.Pay("g.root.a", "alice", prepare("g.root.b.bob.via-root"))
	require.NoError(t, err)
	require.IsType(t, &protocol.Fulfill{}, res)
	assert.Equal(t, "g.root.b.bob.via-root", <-received)

	require.NoError(t, vh.Connect("g.root.a", "g.root.b", state.RelationPeer))

	select {
	case <-success:
		t.Log("Reached optimal!")
		assert.Equal(t, "g.root.b.bob.direct", <-received)
	case <-time.After(10 * time.Second):
		t.Error("timed out waiting for the peering to be preferred")
	case err := <-errs:
		t.Error(err)
	}
	assert.True(t, conv2.Triggered())

	// the peering goes away, traffic falls back to the parent
	require.NoError(t, vh.Disconnect("g.root.a", "g.root.b", state.RelationPeer))
	require.Eventually(t, func() bool {
		return vh.RoutedVia("g.root.a", "g.root.b", "g.root")
	}, 10*time.Second, 10*time.Millisecond)
}
