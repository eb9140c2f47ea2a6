package optimization

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelector_Run(t *testing.T) {
	p := newTwoAssetProblem(t)
	selector := NewSelector(p, 42, zerolog.Nop())

	best, err := selector.Run(EngineNames, 20, 40, 3)
	require.NoError(t, err)
	require.Len(t, best, len(EngineNames))

	for _, name := range EngineNames {
		res, ok := best[name]
		require.True(t, ok, "missing result for %s", name)
		assert.Equal(t, name, res.Engine)
		assertOnSimplex(t, res.Weights)
		assert.Len(t, res.History, 40)
	}
}

func TestSelector_Deterministic(t *testing.T) {
	p := newFourAssetProblem(t)

	first, err := NewSelector(p, 7, zerolog.Nop()).Run(EngineNames, 15, 25, 4)
	require.NoError(t, err)
	second, err := NewSelector(p, 7, zerolog.Nop()).Run(EngineNames, 15, 25, 4)
	require.NoError(t, err)

	assert.Equal(t, first, second, "a fixed seed reproduces the whole selection")
}

func TestSelector_SeedChangesOutcome(t *testing.T) {
	p := newFourAssetProblem(t)

	first, err := NewSelector(p, 1, zerolog.Nop()).Run([]string{EngineGenetic}, 15, 25, 1)
	require.NoError(t, err)
	second, err := NewSelector(p, 2, zerolog.Nop()).Run([]string{EngineGenetic}, 15, 25, 1)
	require.NoError(t, err)

	assert.NotEqual(t, first[EngineGenetic].Weights, second[EngineGenetic].Weights)
}

func TestSelector_UnknownEngine(t *testing.T) {
	p := newTwoAssetProblem(t)
	selector := NewSelector(p, 1, zerolog.Nop())

	_, err := selector.Run([]string{EngineBat, "tabu_search"}, 10, 10, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown engine")
}

func TestSelector_ValidatesArguments(t *testing.T) {
	p := newTwoAssetProblem(t)
	selector := NewSelector(p, 1, zerolog.Nop())

	tests := []struct {
		name        string
		engines     []string
		popSize     int
		generations int
		runs        int
	}{
		{"no engines", nil, 10, 10, 1},
		{"zero population", []string{EngineBat}, 0, 10, 1},
		{"zero generations", []string{EngineBat}, 10, 0, 1},
		{"zero runs", []string{EngineBat}, 10, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := selector.Run(tt.engines, tt.popSize, tt.generations, tt.runs)
			assert.Error(t, err)
		})
	}
}
