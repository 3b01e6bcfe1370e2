package analysis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_AnalyzePatterns(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/analyze/patterns" {
			t.Errorf("path: got %q", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("method: got %q", r.Method)
		}
		var req struct {
			Text     string `json:"text"`
			Language string `json:"language"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Text != "body text" {
			t.Errorf("text: got %q", req.Text)
		}
		if req.Language != "en" {
			t.Errorf("language: got %q", req.Language)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(PatternAnalysis{
			HighRiskParagraphs: map[int]ParagraphRisk{
				1: {RiskScore: 82, RiskLevel: "high", SimpleRatio: 0.7},
			},
		})
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, Language: "en"}
	res, err := c.AnalyzePatterns(context.Background(), "body text")
	if err != nil {
		t.Fatalf("AnalyzePatterns: %v", err)
	}
	risk, ok := res.HighRiskParagraphs[1]
	if !ok {
		t.Fatal("missing paragraph 1 in risk map")
	}
	if risk.RiskScore != 82 || risk.RiskLevel != "high" {
		t.Fatalf("risk: got %+v", risk)
	}
}

func TestClient_StageCarriesParagraphIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Text           string `json:"text"`
			ParagraphIndex int    `json:"paragraphIndex"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.ParagraphIndex != 4 {
			t.Errorf("paragraphIndex: got %d", req.ParagraphIndex)
		}
		_ = json.NewEncoder(w).Encode(StageResult{
			ModifiedText: "diversified " + req.Text,
			Changes:      []ChangeCount{{Type: "sentence_structure", Count: 2}},
		})
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL}
	res, err := c.DiversifyPatterns(context.Background(), 4, "plain paragraph")
	if err != nil {
		t.Fatalf("DiversifyPatterns: %v", err)
	}
	if res.ModifiedText != "diversified plain paragraph" {
		t.Fatalf("modifiedText: got %q", res.ModifiedText)
	}
	if len(res.Changes) != 1 || res.Changes[0].Count != 2 {
		t.Fatalf("changes: got %+v", res.Changes)
	}
}

func TestClient_NonOKStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream overloaded", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL}
	if _, err := c.AnalyzeDocumentText(context.Background(), "x"); err == nil {
		t.Fatal("expected error on 502 response")
	}
}

func TestClient_Unconfigured(t *testing.T) {
	var c *Client
	if _, err := c.AnalyzeDocumentText(context.Background(), "x"); err == nil {
		t.Fatal("expected error from nil client")
	}
}

func TestNormalizeLanguage(t *testing.T) {
	if got := NormalizeLanguage("EN-us"); got != "en-US" {
		t.Fatalf("got %q", got)
	}
	if got := NormalizeLanguage("  "); got != "" {
		t.Fatalf("got %q", got)
	}
	if got := NormalizeLanguage("not a tag at all!!"); got != "not a tag at all!!" {
		t.Fatalf("got %q", got)
	}
}
