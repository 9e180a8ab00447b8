package main

import (
	"bytes"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"raidboss/internal/config"
	"raidboss/internal/difficulty"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Usage(t *testing.T) {
	assert.ErrorIs(t, run(nil, &bytes.Buffer{}), errUsage)
	assert.ErrorIs(t, run([]string{"backup"}, &bytes.Buffer{}), errUsage)
}

func TestSimulate_IsDeterministicPerSeed(t *testing.T) {
	var a, b bytes.Buffer
	require.NoError(t, run([]string{"simulate", "--seed", "42"}, &a))
	require.NoError(t, run([]string{"simulate", "--seed", "42"}, &b))
	assert.Equal(t, a.String(), b.String())

	out := a.String()
	assert.Contains(t, out, "seed: 42")
	for _, id := range difficulty.Order {
		assert.Contains(t, out, "=== Simulating difficulty: "+string(id)+" ===")
	}
	assert.Equal(t, 4, strings.Count(out, "---"))
}

func TestSimulate_SingleTierAndBadTier(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"simulate", "--seed", "1", "--tier", "hard"}, &out))
	assert.Contains(t, out.String(), "difficulty: HARD")
	assert.NotContains(t, out.String(), "difficulty: NORMAL")
	assert.Contains(t, out.String(), "Multiplier: 1.5")

	assert.Error(t, run([]string{"simulate", "--tier", "nightmare"}, &bytes.Buffer{}))
	assert.Error(t, run([]string{"simulate", "--preset", "nightmare"}, &bytes.Buffer{}))
}

func TestBalance_Deterministic(t *testing.T) {
	cat := difficulty.Default()
	rules := config.Default().Rules()

	first, err := balance(cat, rules, cat.All(), 20, 9)
	require.NoError(t, err)
	second, err := balance(cat, rules, cat.All(), 20, 9)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	require.Len(t, first, 4)
	for _, s := range first {
		assert.Equal(t, 20, s.Runs)
		assert.LessOrEqual(t, s.MinScore, s.mean())
		assert.LessOrEqual(t, s.mean(), s.MaxScore)
	}

	var out bytes.Buffer
	require.NoError(t, run([]string{"balance", "--runs", "5", "--seed", "3", "--tier", "NORMAL"}, &out))
	assert.Contains(t, out.String(), "runs per tier: 5")
	assert.Error(t, run([]string{"balance", "--runs", "0"}, &bytes.Buffer{}))
}

func TestCheckConfig_ShippedFile(t *testing.T) {
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	path := filepath.Join(filepath.Dir(file), "..", "..", "raidboss_config.yml")

	var out bytes.Buffer
	require.NoError(t, run([]string{"check-config", "--config", path}, &out))
	assert.Contains(t, out.String(), "tickets: 3/3")
	assert.Contains(t, out.String(), "personal best: 12,450,999")
	assert.Contains(t, out.String(), "digest: ")
}
