package cascade

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qc-console/internal/model"
)

func items(names ...string) []model.NamedItem {
	out := make([]model.NamedItem, len(names))
	for i, name := range names {
		out[i] = model.NamedItem{ID: i + 1, Name: name}
	}
	return out
}

func optionNames(l Link) []string {
	out := make([]string, len(l.Options))
	for i, o := range l.Options {
		out[i] = o.Name
	}
	return out
}

func await(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("load did not settle in time")
	}
}

// conditionsFor simulates the backend's per-defect condition sets.
func conditionsFor(parentID int) []model.NamedItem {
	switch parentID {
	case 3:
		return []model.NamedItem{{ID: 31, Name: "Poro"}, {ID: 32, Name: "Grieta"}}
	case 7:
		return []model.NamedItem{{ID: 71, Name: "Rebaba"}}
	}
	return nil
}

func newDefectChain(t *testing.T, load Loader) *Chain {
	t.Helper()

	chain, err := NewChain(
		LinkSpec{Name: "defect", Required: true},
		LinkSpec{Name: "condition", Required: true, Load: load},
	)
	require.NoError(t, err)
	require.NoError(t, chain.SetOptions(0, []model.NamedItem{
		{ID: 3, Name: "Porosidad"},
		{ID: 7, Name: "Rayado"},
	}))
	return chain
}

func TestChain_SelectLoadsDownstreamOptions(t *testing.T) {
	chain := newDefectChain(t, func(_ context.Context, parentID int) ([]model.NamedItem, error) {
		return conditionsFor(parentID), nil
	})

	done, err := chain.Select(context.Background(), 0, 3)
	require.NoError(t, err)
	await(t, done)

	links := chain.Snapshot()
	assert.Equal(t, "ready", links[1].State)
	assert.Equal(t, []string{"Poro", "Grieta"}, optionNames(links[1]))
}

func TestChain_StaleResponseIsDiscarded(t *testing.T) {
	// The load for defect 3 blocks until released, after the load for
	// defect 7 has already been applied. Its late arrival must be dropped.
	release := make(chan struct{})
	chain := newDefectChain(t, func(_ context.Context, parentID int) ([]model.NamedItem, error) {
		if parentID == 3 {
			<-release
		}
		return conditionsFor(parentID), nil
	})

	slow, err := chain.Select(context.Background(), 0, 3)
	require.NoError(t, err)

	fast, err := chain.Select(context.Background(), 0, 7)
	require.NoError(t, err)
	await(t, fast)

	close(release)
	await(t, slow)

	links := chain.Snapshot()
	assert.Equal(t, 7, links[0].Selected)
	assert.Equal(t, "ready", links[1].State)
	assert.Equal(t, []string{"Rebaba"}, optionNames(links[1]),
		"late options for the superseded defect must never be applied")
}

func TestChain_StaleFailureIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	chain := newDefectChain(t, func(_ context.Context, parentID int) ([]model.NamedItem, error) {
		if parentID == 3 {
			<-release
			return nil, errors.New("boom")
		}
		return conditionsFor(parentID), nil
	})

	slow, err := chain.Select(context.Background(), 0, 3)
	require.NoError(t, err)
	fast, err := chain.Select(context.Background(), 0, 7)
	require.NoError(t, err)
	await(t, fast)

	close(release)
	await(t, slow)

	links := chain.Snapshot()
	assert.Equal(t, "ready", links[1].State, "a stale failure must not mark the link failed")
	assert.Empty(t, links[1].Error)
}

func TestChain_UnselectEmptiesDownstreamSynchronously(t *testing.T) {
	release := make(chan struct{})
	chain := newDefectChain(t, func(_ context.Context, parentID int) ([]model.NamedItem, error) {
		if parentID == 3 {
			<-release
		}
		return conditionsFor(parentID), nil
	})

	pending, err := chain.Select(context.Background(), 0, 3)
	require.NoError(t, err)

	// Reset upstream to unselected before the fetch resolves: downstream is
	// Empty immediately and no fetch is issued for the reset itself.
	done, err := chain.Select(context.Background(), 0, 0)
	require.NoError(t, err)
	await(t, done)

	links := chain.Snapshot()
	assert.Equal(t, "empty", links[1].State)
	assert.Empty(t, links[1].Options)

	// The orphaned fetch resolves late and must change nothing.
	close(release)
	await(t, pending)

	links = chain.Snapshot()
	assert.Equal(t, "empty", links[1].State)
	assert.Empty(t, links[1].Options)
}

func TestChain_LoadFailureSurfacesAndEmpties(t *testing.T) {
	chain := newDefectChain(t, func(context.Context, int) ([]model.NamedItem, error) {
		return nil, errors.New("timeout talking to backend")
	})

	done, err := chain.Select(context.Background(), 0, 3)
	require.NoError(t, err)
	await(t, done)

	links := chain.Snapshot()
	assert.Equal(t, "failed", links[1].State)
	assert.Empty(t, links[1].Options)
	assert.Contains(t, links[1].Error, "timeout")

	// Reselecting the upstream value re-triggers the load; no automatic retry.
	assert.False(t, chain.Complete())
}

func TestChain_ThreeLinkDeepReset(t *testing.T) {
	processes := func(context.Context, int) ([]model.NamedItem, error) {
		return items("Extrusión", "Temple"), nil
	}
	machines := func(context.Context, int) ([]model.NamedItem, error) {
		return items("EXT-01"), nil
	}

	chain, err := NewChain(
		LinkSpec{Name: "line", Required: true},
		LinkSpec{Name: "process", Required: true, Load: processes},
		LinkSpec{Name: "machine", Required: true, Load: machines},
	)
	require.NoError(t, err)
	require.NoError(t, chain.SetOptions(0, items("Línea 1", "Línea 2")))

	done, err := chain.Select(context.Background(), 0, 1)
	require.NoError(t, err)
	await(t, done)

	done, err = chain.Select(context.Background(), 1, 2)
	require.NoError(t, err)
	await(t, done)

	done, err = chain.Select(context.Background(), 2, 1)
	require.NoError(t, err)
	await(t, done)
	assert.True(t, chain.Complete())

	// Changing the line resets process AND machine.
	done, err = chain.Select(context.Background(), 0, 2)
	require.NoError(t, err)
	await(t, done)

	links := chain.Snapshot()
	assert.Equal(t, 0, links[1].Selected)
	assert.Equal(t, 0, links[2].Selected)
	assert.Equal(t, "empty", links[2].State)
	assert.False(t, chain.Complete())
}

func TestChain_SelectValidatesAgainstLoadedOptions(t *testing.T) {
	chain := newDefectChain(t, func(context.Context, int) ([]model.NamedItem, error) {
		return nil, nil
	})

	_, err := chain.Select(context.Background(), 0, 99)
	assert.Error(t, err)

	// Selecting on a link whose options never loaded is rejected too.
	_, err = chain.Select(context.Background(), 1, 31)
	assert.Error(t, err)
}

func TestChain_ValidateReportsPerLink(t *testing.T) {
	release := make(chan struct{})
	chain := newDefectChain(t, func(context.Context, int) ([]model.NamedItem, error) {
		<-release
		return conditionsFor(3), nil
	})

	problems := chain.Validate()
	assert.Contains(t, problems, "defect")
	assert.Contains(t, problems, "condition")

	done, err := chain.Select(context.Background(), 0, 3)
	require.NoError(t, err)

	problems = chain.Validate()
	assert.NotContains(t, problems, "defect")
	assert.Equal(t, "las opciones siguen cargando", problems["condition"])

	close(release)
	await(t, done)

	done, err = chain.Select(context.Background(), 1, 31)
	require.NoError(t, err)
	await(t, done)

	assert.True(t, chain.Complete())
}
