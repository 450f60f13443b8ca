package insights

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

const modelAnswer = "Here is the analysis you asked for.\n" +
	"```json\n" +
	`{"summary":"You spend mostly on dining.","topCategories":["Dining","Groceries","Transport"],` +
	`"tip":"Pay bills on the due date to max out your multiplier.",` +
	`"mission":{"title":"Early Bird","description":"Pay two bills before their due date.","reward":5}}` +
	"\n```\nLet me know if you want more detail."

func TestParseInsight(t *testing.T) {
	t.Run("extracts fenced json with surrounding prose", func(t *testing.T) {
		insight, err := ParseInsight(modelAnswer)
		if err != nil {
			t.Fatalf("ParseInsight failed: %v", err)
		}
		if insight.Summary != "You spend mostly on dining." {
			t.Errorf("summary = %q", insight.Summary)
		}
		if len(insight.TopCategories) != 3 || insight.TopCategories[0] != "Dining" {
			t.Errorf("topCategories = %v", insight.TopCategories)
		}
		if insight.Mission.Title != "Early Bird" {
			t.Errorf("mission title = %q", insight.Mission.Title)
		}
		if !insight.Mission.Reward.Equal(decimal.NewFromInt(5)) {
			t.Errorf("mission reward = %s, want 5", insight.Mission.Reward)
		}
	})

	t.Run("bare fence without language tag", func(t *testing.T) {
		text := "```\n{\"summary\":\"ok\",\"topCategories\":[],\"tip\":\"t\",\"mission\":{}}\n```"
		insight, err := ParseInsight(text)
		if err != nil {
			t.Fatalf("ParseInsight failed: %v", err)
		}
		if insight.Summary != "ok" {
			t.Errorf("summary = %q", insight.Summary)
		}
	})

	t.Run("missing fence", func(t *testing.T) {
		_, err := ParseInsight(`{"summary":"no fence"}`)
		if !errors.Is(err, ErrNoJSONBlock) {
			t.Errorf("expected ErrNoJSONBlock, got %v", err)
		}
	})

	t.Run("unterminated fence", func(t *testing.T) {
		_, err := ParseInsight("```json\n{\"summary\":\"x\"}")
		if !errors.Is(err, ErrNoJSONBlock) {
			t.Errorf("expected ErrNoJSONBlock, got %v", err)
		}
	})

	t.Run("invalid json inside fence", func(t *testing.T) {
		_, err := ParseInsight("```json\nnot json\n```")
		if err == nil {
			t.Error("expected parse error, got nil")
		}
	})
}

func TestClient_Summarize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization = %q", got)
		}
		var payload struct {
			Instruction  string        `json:"instruction"`
			Transactions []Transaction `json:"transactions"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		if payload.Instruction == "" {
			t.Error("expected a non-empty instruction")
		}
		if len(payload.Transactions) != 2 {
			t.Errorf("transactions = %d, want 2", len(payload.Transactions))
		}
		json.NewEncoder(w).Encode(map[string]string{"text": modelAnswer})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	insight, err := client.Summarize(context.Background(), []Transaction{
		{Description: "Friday dinner", Amount: decimal.RequireFromString("60"), Kind: "payment"},
		{Description: "Reward", Amount: decimal.RequireFromString("3"), Kind: "reward"},
	})
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if insight.Tip == "" {
		t.Error("expected a tip")
	}
}

func TestClient_Summarize_UpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	if _, err := client.Summarize(context.Background(), nil); err == nil {
		t.Error("expected error for upstream 503, got nil")
	}
}
