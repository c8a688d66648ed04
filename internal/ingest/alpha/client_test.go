package alpha

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/claude/liftlog/internal/ingest"
)

// TestClientImport verifies the export is posted to the import endpoint
// with the week and dry-run flag and the result is decoded.
func TestClientImport(t *testing.T) {
	var gotPath, gotWeek, gotDryRun, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotWeek = r.URL.Query().Get("week")
		gotDryRun = r.URL.Query().Get("dry_run")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		json.NewEncoder(w).Encode(ingest.Result{Week: "Week 1", SessionsReceived: 2, WorkoutsInserted: 2, DryRun: true})
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL+"/").Import(context.Background(), strings.NewReader(sampleCSV), "Week 1", true)
	if err != nil {
		t.Fatal(err)
	}
	if gotPath != "/api/v1/import/alpha" || gotWeek != "Week 1" || gotDryRun != "true" {
		t.Errorf("request = %s week=%q dry_run=%q", gotPath, gotWeek, gotDryRun)
	}
	if gotBody != sampleCSV {
		t.Error("export body not forwarded unchanged")
	}
	if res.WorkoutsInserted != 2 || !res.DryRun {
		t.Errorf("result = %+v", res)
	}
}

// TestClientImportError verifies a non-200 reply surfaces status and body.
func TestClientImportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"unknown week"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Import(context.Background(), strings.NewReader(sampleCSV), "Week 9", false)
	if err == nil || !strings.Contains(err.Error(), "404") || !strings.Contains(err.Error(), "unknown week") {
		t.Errorf("err = %v, want status and body", err)
	}
}
