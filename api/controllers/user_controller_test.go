package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/filemigrate/api/models"
	"github.com/moyoez/filemigrate/share"
	"github.com/moyoez/filemigrate/status"
	"github.com/moyoez/filemigrate/transfer"
	"github.com/moyoez/filemigrate/types"
)

// setupRouter creates a test router with the user endpoints
func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	self := router.Group("/api/self/v1")
	{
		self.POST("/upload-batch", UserUploadBatch)
		self.GET("/batch/:id", UserBatchGet)
		self.GET("/batches", UserBatchList)
		self.GET("/status", UserStatus)
	}

	return router
}

// directStorage accepts every direct upload and records the file names it saw.
type directStorage struct {
	mu    sync.Mutex
	names []string
}

func (s *directStorage) handler() http.Handler {
	r := gin.New()
	r.POST("/direct", func(c *gin.Context) {
		fh, err := c.FormFile("file")
		if err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		s.mu.Lock()
		s.names = append(s.names, c.PostForm("filename"))
		s.mu.Unlock()
		if fh.Filename == "reject.txt" {
			c.Status(http.StatusForbidden)
			return
		}
		c.Status(http.StatusNoContent)
	})
	return r
}

// setupUploads wires fresh models against a fake direct-upload server
func setupUploads(t *testing.T) *directStorage {
	t.Helper()
	gin.SetMode(gin.TestMode)
	storage := &directStorage{}
	srv := httptest.NewServer(storage.handler())
	t.Cleanup(srv.Close)

	models.SetCoordinator(transfer.NewCoordinator(srv.Client()))
	models.SetBatchRegistry(share.NewBatchRegistry(time.Minute))
	models.SetDefaultDestination(types.Destination{Kind: types.DestinationDirect, URL: srv.URL + "/direct"})
	return storage
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("content of "+name), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
}

func postJSON(router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	jsonBody, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUserUploadBatch(t *testing.T) {
	storage := setupUploads(t)
	router := setupRouter()

	filesDir := t.TempDir()
	writeFiles(t, filesDir, "a.txt", "reject.txt")
	folder := t.TempDir()
	if err := os.MkdirAll(filepath.Join(folder, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFiles(t, folder, "b.csv")
	writeFiles(t, filepath.Join(folder, "nested"), "c.json")

	w := postJSON(router, "/api/self/v1/upload-batch", types.UserUploadBatchRequest{
		Groups: []types.UploadGroup{
			{Name: "files", Paths: []string{filepath.Join(filesDir, "a.txt"), filepath.Join(filesDir, "reject.txt")}},
			{Name: "folders", Paths: []string{folder}},
			{Name: "empty"},
		},
	})
	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusAccepted, w.Code, w.Body.String())
	}
	var resp types.UserUploadBatchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.Total != 4 || resp.BatchID == "" {
		t.Fatalf("Unexpected response %+v", resp)
	}

	tally, ok := models.GetBatchRegistry().Get(resp.BatchID)
	if !ok {
		t.Fatalf("Batch %s not registered", resp.BatchID)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := tally.Wait(ctx); err != nil {
		t.Fatalf("Batch did not complete: %v", err)
	}

	req, _ := http.NewRequest(http.MethodGet, "/api/self/v1/batch/"+resp.BatchID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	var result types.BatchResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to parse batch: %v", err)
	}
	if !result.Complete || result.Total != 4 || result.Succeeded != 3 || result.Failed != 1 {
		t.Errorf("Unexpected batch counters %+v", result)
	}
	groups := map[string]int{}
	for _, item := range result.Items {
		groups[item.Group]++
		if item.Name == "reject.txt" && item.State != types.ItemFailed {
			t.Errorf("reject.txt should fail, got %s", item.State)
		}
	}
	if groups["files"] != 2 || groups["folders"] != 2 {
		t.Errorf("Unexpected group split %v", groups)
	}
	storage.mu.Lock()
	defer storage.mu.Unlock()
	if len(storage.names) != 4 {
		t.Errorf("Expected 4 uploads, got %d", len(storage.names))
	}
}

func TestUserUploadBatchInvalid(t *testing.T) {
	setupUploads(t)
	router := setupRouter()

	tests := []struct {
		name string
		body any
	}{
		{"no files", types.UserUploadBatchRequest{Groups: []types.UploadGroup{{Name: "files"}}}},
		{"missing path", types.UserUploadBatchRequest{Groups: []types.UploadGroup{{Name: "files", Paths: []string{"/definitely/not/here.txt"}}}}},
		{"bad kind", types.UserUploadBatchRequest{Kind: "carrier-pigeon", Groups: []types.UploadGroup{{Name: "files"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(router, "/api/self/v1/upload-batch", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
			}
		})
	}

	req, _ := http.NewRequest(http.MethodPost, "/api/self/v1/upload-batch", bytes.NewBufferString("{"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d for malformed body, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestUserBatchGetNotFound(t *testing.T) {
	setupUploads(t)
	router := setupRouter()

	req, _ := http.NewRequest(http.MethodGet, "/api/self/v1/batch/nope", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestUserStatus(t *testing.T) {
	router := setupRouter()
	models.ResetPoll()
	models.SetStatusURL("http://localhost/job/status")
	t.Cleanup(func() {
		models.SetStatusURL("")
		models.ResetPoll()
	})

	get := func() map[string]any {
		req, _ := http.NewRequest(http.MethodGet, "/api/self/v1/status", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
		}
		body, _ := io.ReadAll(w.Body)
		var resp map[string]any
		if err := json.Unmarshal(body, &resp); err != nil {
			t.Fatalf("Failed to parse response: %v", err)
		}
		return resp
	}

	resp := get()
	if resp["polling"] != true {
		t.Errorf("Expected polling true, got %v", resp["polling"])
	}
	if _, ok := resp["report"]; ok {
		t.Error("No report expected before the first poll")
	}

	models.RecordPoll(status.PollResult{Unavailable: true, Message: types.UnknownErrorMessage})
	resp = get()
	if resp["unavailable"] != true || resp["message"] != "Unknown error" {
		t.Errorf("Unexpected unavailable response %v", resp)
	}

	agg := status.NewAggregator()
	models.RecordPoll(status.PollResult{Report: agg.Ingest(types.StatusSnapshot{Status: types.JobStatusDone, RawStatus: "Done"})})
	resp = get()
	report, ok := resp["report"].(map[string]any)
	if !ok {
		t.Fatalf("Expected report object, got %v", resp["report"])
	}
	if report["continueUnlocked"] != true {
		t.Errorf("Expected continueUnlocked true, got %v", report["continueUnlocked"])
	}
}
