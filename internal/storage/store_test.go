package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/forcegraph/internal/graph"
	"github.com/san-kum/forcegraph/internal/sim"
)

func sampleResult() *sim.Result {
	return &sim.Result{
		Steps:     2,
		Skipped:   1,
		Energy:    []float64{4, 2.5, 1.25},
		StepTimes: []time.Duration{2 * time.Millisecond, 4 * time.Millisecond},
		Metrics:   map[string]float64{"peak_speed": 3},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	meta := RunMetadata{Preset: "small", Backend: "serial-brute", Nodes: 10, Edges: 9, Params: graph.DefaultParams()}
	runID, err := st.Save(meta, sampleResult())
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	loaded, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, runID, loaded.ID)
	assert.Equal(t, "small", loaded.Preset)
	assert.Equal(t, 2, loaded.Steps)
	assert.Equal(t, 1, loaded.Skipped)
	assert.InDelta(t, 3.0, loaded.MeanStepMS, 1e-9)
	assert.Equal(t, graph.DefaultParams(), loaded.Params)
	assert.Equal(t, 3.0, loaded.Metrics["peak_speed"])

	trace, err := st.LoadTrace(runID)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, trace.Steps)
	assert.Equal(t, []float64{4, 2.5, 1.25}, trace.Energy)
	assert.Equal(t, []float64{2, 4}, trace.StepMS)
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	first, err := st.Save(RunMetadata{}, sampleResult())
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	second, err := st.Save(RunMetadata{}, sampleResult())
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "junk"), 0755))

	runs, err = st.List()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second, runs[0].ID)
	assert.Equal(t, first, runs[1].ID)
}

func TestStoreResolve(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	for _, name := range []string{"run_aa11", "run_aa22", "run_bb33"} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, name), 0755))
	}

	id, err := st.Resolve("run_b")
	require.NoError(t, err)
	assert.Equal(t, "run_bb33", id)

	id, err = st.Resolve("run_aa11")
	require.NoError(t, err)
	assert.Equal(t, "run_aa11", id)

	_, err = st.Resolve("run_aa")
	assert.ErrorIs(t, err, ErrAmbiguousRun)

	_, err = st.Resolve("nope")
	assert.ErrorIs(t, err, ErrRunNotFound)

	_, err = st.Resolve("")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestStoreLoad_Missing(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "absent"))
	_, err := st.Load("whatever")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(RunMetadata{Topology: "ring"}, sampleResult())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, st.ExportJSON(&buf, runID[:12]))

	var out ExportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, runID, out.Run.ID)
	assert.Equal(t, "ring", out.Run.Topology)
	assert.Len(t, out.Trace.Energy, 3)
}
