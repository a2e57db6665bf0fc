//go:build integration

package integration_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

func baseURL() string {
	if v := os.Getenv("TALENTFLOW_TEST_BASE_URL"); strings.TrimSpace(v) != "" {
		return strings.TrimRight(v, "/")
	}
	return "http://127.0.0.1:18080"
}

func TestAssessmentJourneyIntegration(t *testing.T) {
	client := &http.Client{Timeout: 5 * time.Second}
	base := baseURL()
	stamp := time.Now().UnixNano()

	var created struct {
		ID       string `json:"id"`
		Sections []struct {
			ID string `json:"id"`
		} `json:"sections"`
	}
	doJSON(t, client, http.MethodPost, base+"/api/assessment", map[string]any{
		"jobTitle": fmt.Sprintf("Integration Engineer %d", stamp),
		"title":    "Integration screening",
		"sections": []map[string]any{{
			"id":    "S1",
			"title": "Basics",
			"questions": []map[string]any{
				{
					"id": "Q1", "type": "single-choice", "title": "Do you write Go?", "points": 2,
					"options":       []map[string]string{{"label": "Yes", "value": "yes"}, {"label": "No", "value": "no"}},
					"correctAnswer": "yes",
				},
				{
					"id": "Q2", "type": "long-text", "title": "Describe a Go project", "required": true,
					"conditionalLogic": map[string]string{"dependsOn": "Q1", "condition": "equals", "value": "yes"},
				},
			},
		}},
	}, http.StatusCreated, &created)
	if created.ID == "" || len(created.Sections) != 1 {
		t.Fatalf("unexpected create response: %+v", created)
	}

	var invite struct {
		Token string `json:"token"`
	}
	candidateEmail := fmt.Sprintf("candidate_%d@example.com", stamp)
	doJSON(t, client, http.MethodPost, base+"/api/assessment/"+created.ID+"/invites", map[string]string{
		"candidateName":  "Integration Candidate",
		"candidateEmail": candidateEmail,
	}, http.StatusCreated, &invite)
	if invite.Token == "" {
		t.Fatalf("invite did not return a token")
	}

	var submitted struct {
		ID       string  `json:"id"`
		Score    float64 `json:"score"`
		MaxScore float64 `json:"maxScore"`
	}
	doJSON(t, client, http.MethodPost, base+"/api/assessment/"+created.ID+"/responses?invite="+invite.Token, map[string]any{
		"candidateName":  "Integration Candidate",
		"candidateEmail": candidateEmail,
		"answers":        map[string]any{"Q1": "yes", "Q2": "A log shipper built on goroutines."},
	}, http.StatusCreated, &submitted)
	if submitted.ID == "" || submitted.Score != 2 || submitted.MaxScore != 2 {
		t.Fatalf("unexpected submission: %+v", submitted)
	}

	var summary struct {
		TotalResponses int `json:"totalResponses"`
		PassRate       int `json:"passRate"`
	}
	doJSON(t, client, http.MethodGet, base+"/api/assessment/"+created.ID+"/results", nil, http.StatusOK, &summary)
	if summary.TotalResponses != 1 || summary.PassRate != 100 {
		t.Fatalf("unexpected results: %+v", summary)
	}

	resp, err := client.Get(base + "/api/assessment/" + created.ID + "/export?format=long")
	if err != nil {
		t.Fatalf("export request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("export status %d body %s", resp.StatusCode, string(body))
	}
	csvData, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read export data: %v", err)
	}
	if !strings.Contains(string(csvData), submitted.ID) {
		t.Fatalf("export csv did not contain response id; csv=%s", csvData)
	}

	doJSON(t, client, http.MethodDelete, base+"/api/assessment/"+created.ID, nil, http.StatusNoContent, nil)
	doJSON(t, client, http.MethodGet, base+"/api/assessment/"+created.ID, nil, http.StatusNotFound, nil)
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, wantStatus int, out any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Actor", "integration")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("http %s %s failed: %v", method, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		bodyBytes, _ := io.ReadAll(resp.Body)
		t.Fatalf("unexpected status %d for %s %s: %s", resp.StatusCode, method, url, string(bodyBytes))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
			t.Fatalf("decode response from %s: %v", url, err)
		}
	}
}
