package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philocompass/compass/internal/api"
	"github.com/philocompass/compass/internal/config"
	"github.com/philocompass/compass/internal/quiz"
	"github.com/philocompass/compass/internal/result"
	"github.com/philocompass/compass/internal/store"
)

func TestPrintResult(t *testing.T) {
	var buf bytes.Buffer
	d := &result.Derived{
		AnswerID: 9,
		Label: api.Label{
			FullLabel:      "NSOP-ADSL",
			CategoryScores: api.CategoryScores{Logic: 3, Ethics: -2},
		},
		Closest: api.ClosestPhilosopher{
			Philosopher: &api.Philosopher{Name: "Hume", Era: "Modern"},
			Distance:    1.5,
		},
	}
	printResult(&buf, quiz.Vector{2, -1}, d)

	out := buf.String()
	assert.Contains(t, out, "Answer #9  NSOP-ADSL")
	assert.Contains(t, out, "Logic        +3")
	assert.Contains(t, out, "Ethics       -2")
	assert.Contains(t, out, "+2 -1 +0")
	assert.Contains(t, out, "Hume (Modern), distance 1.50")
}

func TestPrintResultWithoutPhilosopher(t *testing.T) {
	var buf bytes.Buffer
	printResult(&buf, quiz.Vector{}, &result.Derived{AnswerID: 1})
	assert.False(t, strings.Contains(buf.String(), "Closest"))
}

func TestOpenKV(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Store.Backend = config.StoreMemory
		kv, err := openKV(ctx, cfg)
		require.NoError(t, err)
		defer kv.Close()
		assert.IsType(t, &store.MemoryKV{}, kv)
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Store.Path = filepath.Join(t.TempDir(), "state", "compass.db")
		kv, err := openKV(ctx, cfg)
		require.NoError(t, err)
		defer kv.Close()
		assert.IsType(t, &store.Store{}, kv)
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Store.Backend = "etcd"
		_, err := openKV(ctx, cfg)
		assert.Error(t, err)
	})
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.Run(versionCmd, nil)
	assert.Equal(t, "compass (devel)\n", buf.String())
}
