package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"jamsync/internal/config"
	"jamsync/internal/history"
	"jamsync/internal/testsupport"
)

type cliTestEnv struct {
	cfg          *config.Config
	configPath   string
	workbookPath string
	catalogPath  string
	outDir       string
}

const testCatalog = `{"id":"id1","name":"Wonderwall - Oasis","properties":{"song":"Wonderwall","artist":"Oasis","specialbooks":"regular"}}
{"id":"id2","name":"Hotel California - Eagles","properties":{"song":"Hotel California","artist":"Eagles","specialbooks":"regular, xmas"}}
{"id":"id3","name":"Yesterday - The Beatles","properties":{"song":"Yesterday","artist":"The Beatles"}}
{"id":"id4","properties":{"song":"No Artist"}}
`

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Chdir(base)
	cfg := testsupport.NewConfig(t)

	env := &cliTestEnv{
		cfg:          cfg,
		configPath:   filepath.Join(base, "jamsync-test.toml"),
		workbookPath: filepath.Join(base, "workbook.json"),
		catalogPath:  filepath.Join(base, "catalog.jsonl"),
		outDir:       filepath.Join(base, "out"),
	}
	writeTestConfig(t, env.configPath, cfg)
	testsupport.WriteFile(t, env.catalogPath, []byte(testCatalog))

	header := []string{"Page", "Song", "Artist", "Requested By"}
	testsupport.WriteJSON(t, env.workbookPath, map[string]any{
		"spreadsheets": []map[string]any{{
			"name": "Jam Log 2024",
			"worksheets": []map[string]any{
				{"title": "Index", "values": [][]string{{"Dates"}}},
				{"title": "2024/01/16", "values": [][]string{
					header,
					{"1", "Wonderwall", "Oasis", ""},
					{"2", "Hotel Californ", "Eagles", "A"},
					{"", "", "", ""},
					{"3", "Yesterday", "Beatles", ""},
					{"", "", "", ""},
				}},
				{"title": "not-a-date", "values": [][]string{header, {"1", "Wonderwall", "Oasis", ""}}},
				{"title": "2024/01/30", "values": [][]string{
					header,
					{"1", "Mystery Tune", "Nobody", ""},
					{"2", "-", "", ""},
				}},
			},
		}},
	})
	return env
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\nstate_dir = %q\nlog_dir = %q\n\n[sync]\nworkers = %d\n",
		cfg.Paths.StateDir,
		cfg.Paths.LogDir,
		cfg.Sync.Workers,
	)
	testsupport.WriteFile(t, path, []byte(content))
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestSyncPublishesDatasetAndHistory(t *testing.T) {
	env := setupCLITestEnv(t)
	output := filepath.Join(env.outDir, "sessions.jsonl")
	args := []string{"sync", "--workbook", env.workbookPath, "--catalog", env.catalogPath, "--output", output, "--json"}

	out, _, err := runCLI(t, args, env.configPath)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	var summary struct {
		Report struct {
			Sessions       int `json:"sessions"`
			SongsMatched   int `json:"songs_matched"`
			SongsUnmatched int `json:"songs_unmatched"`
			Malformed      int `json:"malformed_entries"`
			Skipped        []struct {
				Reason string `json:"reason"`
			} `json:"skipped"`
			Unmatched []history.Pair `json:"unmatched"`
		} `json:"report"`
		Catalog struct {
			Incomplete int `json:"incomplete"`
		} `json:"catalog"`
		Outputs []struct {
			Path    string `json:"path"`
			Changed bool   `json:"changed"`
		} `json:"outputs"`
		HistoryRunID int64 `json:"history_run_id"`
	}
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode sync output: %v\n%s", err, out)
	}
	if summary.Report.Sessions != 2 || summary.Report.SongsMatched != 3 ||
		summary.Report.SongsUnmatched != 1 || summary.Report.Malformed != 1 {
		t.Fatalf("unexpected report: %+v", summary.Report)
	}
	if len(summary.Report.Skipped) != 2 || summary.Catalog.Incomplete != 1 {
		t.Fatalf("unexpected skips or catalog stats: %+v %+v", summary.Report.Skipped, summary.Catalog)
	}
	if len(summary.Outputs) != 1 || !summary.Outputs[0].Changed || summary.HistoryRunID == 0 {
		t.Fatalf("expected a written output and a history row: %+v", summary)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	requireContains(t, string(data), `"song":"Hotel California"`)
	requireContains(t, string(data), `"requested_by_code":"A"`)

	out, _, err = runCLI(t, []string{"validate", output}, "")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	requireContains(t, out, "OK")
	requireContains(t, out, "(2 records)")

	if _, _, err := runCLI(t, args, env.configPath); err != nil {
		t.Fatalf("second sync: %v", err)
	}

	out, _, err = runCLI(t, []string{"unmatched", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("unmatched: %v", err)
	}
	var pairs []history.UnmatchedPair
	if err := json.Unmarshal([]byte(out), &pairs); err != nil {
		t.Fatalf("decode unmatched output: %v", err)
	}
	if len(pairs) != 1 || pairs[0].Song != "Mystery Tune" || pairs[0].Occurrences != 2 {
		t.Fatalf("unexpected unmatched ledger: %+v", pairs)
	}

	out, _, err = runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "SESSIONS")
	requireContains(t, out, "UNMATCHED")
}

func TestSyncHumanSummary(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"sync", "-w", env.workbookPath, "-k", env.catalogPath, "--dry-run"}, env.configPath)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	requireContains(t, out, "Sessions: 2 extracted from 4 worksheets")
	requireContains(t, out, "malformed_title")
	requireContains(t, out, "Mystery Tune")
	requireContains(t, out, "Dry run: no outputs written")

	out, _, err = runCLI(t, []string{"history", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Fatalf("dry run must not record history, got %s", out)
	}
}

func TestSyncRejectsBadThreshold(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"sync", "-w", env.workbookPath, "-k", env.catalogPath, "--threshold", "1.5"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "matching.threshold") {
		t.Fatalf("expected threshold validation error, got %v", err)
	}
}

func TestMatchCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"match", "-k", env.catalogPath, "wonderwall", "oasis"}, env.configPath)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	requireContains(t, out, "Match: Wonderwall - Oasis [id1]")

	out, _, err = runCLI(t, []string{"match", "-k", env.catalogPath, "--json", "Completely Different Song", "Unknown Artist"}, env.configPath)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	var result struct {
		Accepted bool `json:"accepted"`
		Best     *struct {
			Score float64 `json:"score"`
		} `json:"best"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode match output: %v", err)
	}
	if result.Accepted || result.Best == nil || result.Best.Score >= 0.8 {
		t.Fatalf("expected rejected match with a best candidate: %s", out)
	}

	if _, _, err := runCLI(t, []string{"match", "-k", env.catalogPath, "-", "Oasis"}, env.configPath); err == nil {
		t.Fatal("expected malformed entry error")
	}
}

func TestValidateCommandReportsFailures(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.jsonl")
	testsupport.WriteFile(t, bad, []byte(`{"session_id":"x"}`+"\n"))

	out, _, err := runCLI(t, []string{"validate", bad}, "")
	if err == nil {
		t.Fatal("expected validation failure")
	}
	requireContains(t, out, "FAIL")
	requireContains(t, out, "record 0")
}

func TestCatalogCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"catalog", env.catalogPath}, env.configPath)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	requireContains(t, out, "Records: 4 read, 3 kept, 1 incomplete, 0 invalid")
	requireContains(t, out, "Hotel California")

	out, _, err = runCLI(t, []string{"catalog", env.catalogPath, "--tag", "xmas", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("catalog --tag: %v", err)
	}
	var payload struct {
		Entries []struct {
			ID string `json:"id"`
		} `json:"entries"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode catalog output: %v", err)
	}
	if len(payload.Entries) != 1 || payload.Entries[0].ID != "id2" {
		t.Fatalf("expected only the xmas entry, got %+v", payload.Entries)
	}
}

func TestConfigInitShowAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected refusal to overwrite existing config")
	}

	out, _, err = runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "threshold = 0.8")
	requireContains(t, out, env.cfg.Paths.StateDir)
}

func TestWriteJSONKeepsAmpersands(t *testing.T) {
	cmd := newRootCommand()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	if err := writeJSON(cmd, map[string]string{"artist": "Simon & Garfunkel"}); err != nil {
		t.Fatalf("writeJSON: %v", err)
	}
	requireContains(t, stdout.String(), `"artist": "Simon & Garfunkel"`)
}
