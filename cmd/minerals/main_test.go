package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/minerals/internal/models"
	"github.com/stwalsh4118/minerals/internal/viewmodel"
)

const (
	testApplication = `{
	"docket": "CD 2024-001234",
	"applicant": "Red Fork Operating, LLC",
	"total_acres": 640,
	"formations": ["Woodford"],
	"sections": ["Section 25-T12N-R8W"],
	"location_desc": "Canadian County, Oklahoma",
	"parties": ["Acme Minerals", "Jane Roe"]
}`
	testManifest = "parties:\n  - name: Acme Minerals\n    path: acme.json\n  - name: Jane Roe\n    path: missing.json\n"
	testParty    = `{
	"search_name": "Acme Minerals",
	"status_in_unit": "Respondent",
	"narrative": "Holds by deed.",
	"addresses": ["PO Box 1, Tulsa OK"],
	"consolidated_parcels": [{"parcel_id": "P-1", "legal_description": "NE/4", "net_mineral_acres": 40}],
	"total_confirmed_net_mineral_acres": 40
}`
)

// setupDataDir writes a manifest-backed data directory and points the
// environment at it.
func setupDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"application.json": testApplication,
		"parties.yaml":     testManifest,
		"acme.json":        testParty,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}

	t.Setenv("ENV", "test")
	t.Setenv("DATA_DIR", dir)
	t.Setenv("PARTY_SOURCE", "manifest")
	t.Setenv("PARTY_PARSE_FAILURE", "strict")
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "minerals version "+Version+"\n", out)
}

func TestDocketCommand(t *testing.T) {
	setupDataDir(t)

	out, err := execute(t, "docket")
	require.NoError(t, err)

	var view viewmodel.DocketView
	require.NoError(t, json.Unmarshal([]byte(out), &view))

	assert.Equal(t, "CD 2024-001234", view.Header.Docket)
	assert.Equal(t, "640.00 ac", view.Header.UnitAcres)
	assert.Equal(t, 2, view.PartyCount)
	assert.Equal(t, 40.0, view.TotalConfirmedNMA)

	require.Len(t, view.Parties, 2)
	assert.Equal(t, "Acme Minerals", view.Parties[0].Name)
	assert.Equal(t, 1, view.Parties[0].ParcelsInUnit)
	assert.False(t, view.Parties[0].Placeholder)
	assert.Equal(t, "Jane Roe", view.Parties[1].Name)
	assert.True(t, view.Parties[1].Placeholder)
}

func TestDocketCommand_Party(t *testing.T) {
	setupDataDir(t)

	out, err := execute(t, "docket", "--party", "Acme Minerals")
	require.NoError(t, err)

	var detail viewmodel.PartyDetail
	require.NoError(t, json.Unmarshal([]byte(out), &detail))
	assert.Equal(t, "Holds by deed.", detail.Narrative)
	assert.Equal(t, "40.00 ac", detail.NetAcresDisplay)
}

func TestDocketCommand_MissingApplication(t *testing.T) {
	dir := setupDataDir(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "application.json")))

	_, err := execute(t, "docket")
	assert.ErrorIs(t, err, models.ErrConfigMissing)
}

func TestPartiesCommand(t *testing.T) {
	setupDataDir(t)

	out, err := execute(t, "parties")
	require.NoError(t, err)

	var listing partyListing
	require.NoError(t, json.Unmarshal([]byte(out), &listing))
	assert.Equal(t, "manifest", listing.Source)
	assert.Equal(t, []string{"Acme Minerals", "Jane Roe"}, listing.Parties)
}

func TestPartiesCommand_Directory(t *testing.T) {
	dir := setupDataDir(t)
	partyDir := filepath.Join(dir, "parties")
	require.NoError(t, os.Mkdir(partyDir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(partyDir, "acme.json"), []byte(testParty), 0o600))
	t.Setenv("PARTY_SOURCE", "directory")

	out, err := execute(t, "parties")
	require.NoError(t, err)

	var listing partyListing
	require.NoError(t, json.Unmarshal([]byte(out), &listing))
	assert.Equal(t, "directory", listing.Source)
	assert.Equal(t, []string{"Acme Minerals"}, listing.Parties)
}

func TestTitleChainCommand_Example(t *testing.T) {
	setupDataDir(t)

	out, err := execute(t, "title-chain", "--summary")
	require.NoError(t, err)
	assert.Contains(t, out, "Net Royalty Acres (NRA): 16.00 ac\n")
	assert.Contains(t, out, "Parcels Tracked: 2\n")
	assert.Contains(t, out, "Data Source: AI Analysis\n")
}

func TestTitleChainCommand_WithoutDocketData(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("DATA_DIR", t.TempDir())

	for _, source := range []string{"manifest", "directory", "database"} {
		t.Run(source, func(t *testing.T) {
			t.Setenv("PARTY_SOURCE", source)
			t.Setenv("DB_PASSWORD", "unused")

			out, err := execute(t, "title-chain", "--summary")
			require.NoError(t, err)
			assert.Contains(t, out, "Net Royalty Acres (NRA): 16.00 ac\n")
		})
	}
}

func TestTitleChainCommand_File(t *testing.T) {
	dir := setupDataDir(t)

	upload := filepath.Join(dir, "upload.json")
	rows := `{"parcels": [
		{"parcel": "A", "type": "Royalty", "nra": 2.5},
		{"parcel": "B", "type": "Working Interest", "nra": 9}
	]}`
	require.NoError(t, os.WriteFile(upload, []byte(rows), 0o600))

	out, err := execute(t, "title-chain", upload)
	require.NoError(t, err)

	var view viewmodel.TitleChainView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.False(t, view.Example)
	assert.Equal(t, 2.5, view.TotalNetRoyaltyAcres)
	assert.Equal(t, 2, view.ParcelCount)
	require.Len(t, view.Rows, 2)
	assert.Equal(t, viewmodel.ClassRoyalty, view.Rows[0].Classification)
	assert.Equal(t, viewmodel.ClassOther, view.Rows[1].Classification)
}

func TestTitleChainCommand_EmptyFile(t *testing.T) {
	dir := setupDataDir(t)

	upload := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(upload, []byte(`[]`), 0o600))

	out, err := execute(t, "title-chain", "--summary", upload)
	require.NoError(t, err)
	assert.Equal(t, viewmodel.EmptyRowsWarning+"\n", out)
}

func TestTitleChainCommand_Malformed(t *testing.T) {
	dir := setupDataDir(t)

	upload := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(upload, []byte(`{"rows": 1}`), 0o600))

	_, err := execute(t, "title-chain", upload)
	assert.ErrorIs(t, err, models.ErrMalformedInput)
}
