package main

import (
	"encoding/json"
	"io"
	"log"
	"net"
	"net/http"
	"strings"
)

// startMockAI serves canned ai-service responses on a random local port and
// returns its base URL. The capability is recognised from the prompt text.
func startMockAI() (*http.Server, string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Agent string `json:"agent"`
			Input string `json:"input"`
		}
		if err := json.Unmarshal(body, &req); err != nil || req.Input == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"agent": "mock", "output": mockOutput(req.Input)})
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		log.Fatalf("mock ai listen: %v", err)
	}
	srv := &http.Server{Handler: mux}
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Fatalf("mock ai server failed: %v", err)
		}
	}()
	return srv, "http://" + ln.Addr().String()
}

func mockOutput(prompt string) string {
	switch {
	case strings.Contains(prompt, "application evaluator"):
		return mustJSON(map[string]interface{}{
			"overallScore":    "68",
			"dimensionScores": map[string]interface{}{"atsReadiness": 72, "keywordCoverage": 60.6, "clarityFocus": 80, "targetedFitSignals": 55, "evidenceStrength": 70},
			"decision":        map[string]interface{}{"label": "Borderline", "readyToApply": false, "rationaleBullets": []string{"Strong backend depth", "Few quantified results"}},
			"missingSignals":  []string{"Kubernetes", "on-call ownership"},
			"topImprovements": []map[string]interface{}{
				{"title": "Quantify impact", "action": "Add numbers to the two most recent roles.", "impact": "high", "target": map[string]string{"document": "cv", "anchor": "experience"}},
				{"title": "Mirror keywords", "action": "Name Kubernetes where it was used.", "impact": "medium", "target": map[string]string{"document": "cv", "anchor": "skills"}},
			},
			"notes": map[string]interface{}{"atsNotes": []string{"Standard headings detected"}, "humanReaderNotes": []string{}},
		})
	case strings.Contains(prompt, "improving an existing professional document") && strings.Contains(prompt, "Material type: speech"):
		return "## Elevator pitch\n\nI build Go backends that stay fast under load.\n\n## Career story\n\nTesting first, then platform work at Acme, now latency.\n\n## Why me\n\nI have shipped this exact migration before."
	case strings.Contains(prompt, "improving an existing professional document"):
		return "```markdown\n# Ada Lovelace\n\nBackend engineer who cut p99 latency by 40% across 12 services.\n\n## Experience\n\n- **Engineer, Acme** (2020 to present): led the Go migration of the billing platform, reducing incidents by 30%.\n```"
	case strings.Contains(prompt, "personal narrative speech"):
		return mustJSON(map[string]string{
			"elevatorPitch": "I build backend systems that stay fast under load.",
			"careerStory":   "I started in testing, moved to platform work at Acme and now lead latency work.",
			"whyMe":         "Your team needs reliable Go services and that is what I ship.",
		})
	case strings.Contains(prompt, "cover letter"):
		return "Dear hiring team,\n\nI am applying for the Senior Backend Engineer role.\n\nKind regards,\nAda Lovelace"
	}
	return "# Ada Lovelace\n\nBackend engineer.\n\n## Experience\n\n- **Engineer, Acme** (2020 to present): worked on the billing platform."
}

func mustJSON(v interface{}) string {
	b, _ := json.Marshal(v)
	return string(b)
}
