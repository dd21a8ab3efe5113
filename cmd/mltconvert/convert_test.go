package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	orbmvt "github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arloliu/mlt"
)

func writeMVT(t *testing.T, dir, name string) string {
	t.Helper()

	pois := make([]*geojson.Feature, 0, 20)
	for i := range 20 {
		f := geojson.NewFeature(orb.Point{float64(i * 10), float64(4096 - i*10)})
		f.ID = i + 1
		f.Properties["kind"] = []string{"cafe", "bank", "school"}[i%3]
		f.Properties["rank"] = i
		f.Properties["name"] = "Place"
		f.Properties["name:fr"] = "Lieu"
		pois = append(pois, f)
	}

	data, err := orbmvt.Marshal(orbmvt.Layers{{Name: "pois", Version: 2, Extent: 4096, Features: pois}})
	require.NoError(t, err)

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()

	return out.String(), err
}

func TestConverter_ConvertFile(t *testing.T) {
	dir := t.TempDir()
	input := writeMVT(t, dir, "tile.mvt")

	c := &converter{cfg: DefaultConfig(), logger: zap.NewNop()}
	results, err := c.convertAll([]string{input})
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	require.Equal(t, filepath.Join(dir, "tile.mlt"), res.Output)
	require.Equal(t, filepath.Join(dir, "tile.schema.yaml"), res.Schema)
	require.Equal(t, 1, res.Layers)
	require.Equal(t, 20, res.Features)

	schema, err := loadSchema(schemaPathFor(res.Output))
	require.NoError(t, err)

	data, err := os.ReadFile(res.Output)
	require.NoError(t, err)
	require.Len(t, data, res.OutputSize)

	layers, err := mlt.Decode(data, schema)
	require.NoError(t, err)
	require.Len(t, layers, 1)
	require.Equal(t, "pois", layers[0].Name)
	require.Len(t, layers[0].Features, 20)
	require.Equal(t, uint64(3), layers[0].Features[2].ID)
	require.Equal(t, "school", layers[0].Features[2].Properties["kind"])
	require.Equal(t, map[string]any{"default": "Place", "fr": "Lieu"}, layers[0].Features[2].Properties["name"])
}

func TestConverter_ContinuesAfterFailure(t *testing.T) {
	dir := t.TempDir()
	good := writeMVT(t, dir, "good.mvt")
	bad := writeFile(t, dir, "bad.mvt", "not a tile")
	missing := filepath.Join(dir, "missing.mvt")

	c := &converter{cfg: DefaultConfig(), logger: zap.NewNop(), outDir: dir}
	results, err := c.convertAll([]string{bad, good, missing})
	require.Error(t, err)
	require.Contains(t, err.Error(), bad)
	require.Contains(t, err.Error(), missing)
	require.Len(t, results, 1)
	require.Equal(t, good, results[0].Input)
}

func TestCLI_ConvertInspectStats(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	input := writeMVT(t, dir, "14_1_2.mvt")

	out, err := runCLI(t, "convert", "--log-level", "error", "--compression", "zstd", "-o", outDir, input)
	require.NoError(t, err)
	require.Contains(t, out, filepath.Join(outDir, "14_1_2.mlt"))

	out, err = runCLI(t, "inspect", "-v", filepath.Join(outDir, "14_1_2.mlt"))
	require.NoError(t, err)
	require.Contains(t, out, `layer "pois"`)
	require.Contains(t, out, "geometry")
	require.Contains(t, out, "kind")
	require.Contains(t, out, "name")
	require.Contains(t, out, "Present[")

	out, err = runCLI(t, "stats", "--log-level", "error", input)
	require.NoError(t, err)
	require.Contains(t, out, "FILE")
	require.Contains(t, out, "Zstd")
	require.Contains(t, out, input)
}

func TestCLI_Errors(t *testing.T) {
	dir := t.TempDir()
	input := writeMVT(t, dir, "tile.mvt")

	_, err := runCLI(t, "convert", "--compression", "brotli", input)
	require.Error(t, err)

	_, err = runCLI(t, "convert")
	require.Error(t, err)

	_, err = runCLI(t, "inspect", filepath.Join(dir, "missing.mlt"))
	require.Error(t, err)

	out, err := runCLI(t, "version")
	require.NoError(t, err)
	require.Contains(t, out, "mltconvert v"+version)
}
