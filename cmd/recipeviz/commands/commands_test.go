package commands

import (
	"bytes"
	"context"
	"image/png"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/recipeviz/am"
	grapherror "github.com/teranos/recipeviz/graph/error"
	rvtest "github.com/teranos/recipeviz/internal/testing"
	"github.com/teranos/recipeviz/render"
)

func TestRenderSnapshotFromDatasetFile(t *testing.T) {
	path := rvtest.WriteDataset(t, rvtest.ChainDataset(), ".yaml")

	var buf bytes.Buffer
	scene, err := renderSnapshot(context.Background(), am.Defaults(), renderOptions{
		Dataset: path,
		Method:  "bfs",
		Option:  "shortest",
		Minimap: true,
	}, &buf)
	require.NoError(t, err)

	assert.Equal(t, render.StatusComplete, scene.Status)
	assert.Len(t, scene.Nodes, 3)
	assert.Len(t, scene.Edges, 2)
	assert.Contains(t, buf.String(), "<svg")
	assert.Contains(t, buf.String(), "Water_2.svg")
}

func TestRenderSnapshotMinimapPNG(t *testing.T) {
	path := rvtest.WriteDataset(t, rvtest.ChainDataset(), ".json")

	var buf bytes.Buffer
	_, err := renderSnapshot(context.Background(), am.Defaults(), renderOptions{
		Dataset: path,
		PNG:     true,
		Palette: "dark",
	}, &buf)
	require.NoError(t, err)

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 150, img.Bounds().Dy())
}

func TestRenderSnapshotFromBackend(t *testing.T) {
	backend := rvtest.NewFakeBackend(t, rvtest.ChainDataset())
	cfg := am.Defaults()
	cfg.Search.BackendURL = backend.URL
	cfg.Search.ImageBaseURL = backend.ImageBaseURL()

	var buf bytes.Buffer
	scene, err := renderSnapshot(context.Background(), cfg, renderOptions{
		Target: "Steam",
		Method: "dfs",
		Option: "shortest",
		Width:  640,
		Height: 480,
	}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 640.0, scene.Viewport.Size.Width)
	require.Len(t, backend.Requests(), 1)
	assert.Equal(t, "dfs", backend.Requests()[0].Method)

	backend.SetStatus(http.StatusBadGateway)
	_, err = renderSnapshot(context.Background(), cfg, renderOptions{Target: "Steam"}, &buf)
	require.Error(t, err)
	assert.True(t, grapherror.IsCategory(err, grapherror.CategoryFetch))
}

func TestRenderSnapshotRejectsBadInput(t *testing.T) {
	var buf bytes.Buffer
	_, err := renderSnapshot(context.Background(), am.Defaults(), renderOptions{Target: "Steam", Palette: "sepia"}, &buf)
	assert.Error(t, err)

	_, err = renderSnapshot(context.Background(), am.Defaults(), renderOptions{Target: "Steam", Method: "astar"}, &buf)
	require.Error(t, err)
	assert.True(t, grapherror.IsCategory(err, grapherror.CategoryValidation))
	assert.Zero(t, buf.Len())
}

func TestWriteConfigFormats(t *testing.T) {
	cfg := am.Defaults()

	for _, format := range []string{"toml", "json", "yaml"} {
		var buf bytes.Buffer
		require.NoError(t, writeConfig(&buf, cfg, format), format)
		assert.Contains(t, buf.String(), "localhost:8000", format)
	}

	var buf bytes.Buffer
	assert.Error(t, writeConfig(&buf, cfg, "ini"))
}
