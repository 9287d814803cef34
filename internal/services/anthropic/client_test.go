package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient(
		Config{APIKey: "test-key", BaseURL: server.URL},
		WithSleeper(func(time.Duration) {}),
		WithRetryBackoff(time.Millisecond, time.Millisecond),
	)
	return client, server
}

func basicRequest() MessageRequest {
	return MessageRequest{
		Model:     "claude-sonnet-4-5",
		MaxTokens: 1024,
		Messages:  []Message{TextMessage(RoleUser, "hello")},
	}
}

func TestCreateMessageSendsHeadersAndBody(t *testing.T) {
	var gotHeaders http.Header
	var gotBody MessageRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		if r.URL.Path != "/v1/messages" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(MessageResponse{
			Type:       "message",
			Content:    []ContentBlock{{Type: BlockText, Text: "hi"}},
			StopReason: StopEndTurn,
		})
	})

	resp, err := client.CreateMessage(context.Background(), basicRequest())
	if err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	if resp.TextContent() != "hi" {
		t.Fatalf("text = %q", resp.TextContent())
	}
	if gotHeaders.Get("x-api-key") != "test-key" {
		t.Fatal("missing api key header")
	}
	if gotHeaders.Get("anthropic-version") == "" {
		t.Fatal("missing version header")
	}
	if gotBody.Model != "claude-sonnet-4-5" || gotBody.MaxTokens != 1024 {
		t.Fatalf("unexpected body: %+v", gotBody)
	}
}

func TestCreateMessageRetriesServerErrors(t *testing.T) {
	var calls int
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(MessageResponse{
			Type:    "message",
			Content: []ContentBlock{{Type: BlockText, Text: "recovered"}},
		})
	})

	resp, err := client.CreateMessage(context.Background(), basicRequest())
	if err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
	if resp.TextContent() != "recovered" {
		t.Fatalf("text = %q", resp.TextContent())
	}
}

func TestCreateMessageHonorsRetryAfter(t *testing.T) {
	var calls int
	var slept []time.Duration
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(MessageResponse{
			Type:    "message",
			Content: []ContentBlock{{Type: BlockText, Text: "ok"}},
		})
	}))
	defer server.Close()

	client := NewClient(
		Config{APIKey: "test-key", BaseURL: server.URL},
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }),
	)
	if _, err := client.CreateMessage(context.Background(), basicRequest()); err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	if len(slept) != 1 || slept[0] != 2*time.Second {
		t.Fatalf("slept = %v, want [2s]", slept)
	}
}

func TestCreateMessageDoesNotRetryClientErrors(t *testing.T) {
	var calls int
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := client.CreateMessage(context.Background(), basicRequest())
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestCreateMessageValidatesInput(t *testing.T) {
	client := NewClient(Config{APIKey: ""})
	if _, err := client.CreateMessage(context.Background(), basicRequest()); err == nil {
		t.Fatal("expected api key error")
	}

	client = NewClient(Config{APIKey: "k"})
	request := basicRequest()
	request.MaxTokens = 0
	if _, err := client.CreateMessage(context.Background(), request); err == nil {
		t.Fatal("expected max_tokens error")
	}
}

func TestToolUses(t *testing.T) {
	resp := &MessageResponse{
		StopReason: StopToolUse,
		Content: []ContentBlock{
			{Type: BlockThinking, Thinking: "..."},
			{Type: BlockToolUse, ID: "toolu_1", Name: "list_past_opinions", Input: json.RawMessage(`{}`)},
			{Type: BlockText, Text: "checking the docket"},
		},
	}
	uses := resp.ToolUses()
	if len(uses) != 1 || uses[0].Name != "list_past_opinions" {
		t.Fatalf("unexpected tool uses: %+v", uses)
	}
}

func TestDecodeModelJSON(t *testing.T) {
	type payload struct {
		StartTime string `json:"start_time"`
	}
	cases := []struct {
		name  string
		input string
		want  string
		fails bool
	}{
		{"direct", `{"start_time": "12:30"}`, "12:30", false},
		{"fenced", "```json\n{\"start_time\": \"5:00\"}\n```", "5:00", false},
		{"prose wrapped", `Here you go: {"start_time": "1:02:03"} as requested.`, "1:02:03", false},
		{"empty", "", "", true},
		{"garbage", "not json at all", "", true},
	}
	for _, tc := range cases {
		var got payload
		err := DecodeModelJSON(tc.input, &got)
		if tc.fails {
			if err == nil {
				t.Errorf("%s: expected error", tc.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: %v", tc.name, err)
			continue
		}
		if got.StartTime != tc.want {
			t.Errorf("%s: start_time = %q, want %q", tc.name, got.StartTime, tc.want)
		}
	}
}

func TestDecodeModelJSONSnippetIsBounded(t *testing.T) {
	var target map[string]any
	err := DecodeModelJSON(strings.Repeat("x", 1000), &target)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(err.Error()) > 400 {
		t.Fatalf("error message too long: %d chars", len(err.Error()))
	}
}
