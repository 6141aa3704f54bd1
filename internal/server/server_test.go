package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ironsheep/food-label-mcp/internal/labeler"
	"github.com/ironsheep/food-label-mcp/internal/layout"
	"github.com/ironsheep/food-label-mcp/internal/lexicon"
)

type fakeEngine struct {
	fragments []layout.Fragment
	err       error
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Recognize(context.Context, image.Image) ([]layout.Fragment, error) {
	return f.fragments, f.err
}

func newTestServer(engine *fakeEngine) *Server {
	l := zerolog.Nop()
	svc := labeler.New(engine, nil, labeler.Options{
		Lexicon: lexicon.Options{Logger: &l},
		Logger:  &l,
	})
	return New(svc, Options{Version: "test", Logger: &l})
}

func TestNew(t *testing.T) {
	s := newTestServer(&fakeEngine{})
	if s == nil {
		t.Fatal("New() returned nil")
	}
	if s.version != "test" {
		t.Errorf("version: got %q, want test", s.version)
	}

	l := zerolog.Nop()
	d := New(labeler.New(&fakeEngine{}, nil, labeler.Options{Logger: &l}), Options{Logger: &l})
	if d.version != "dev" {
		t.Errorf("default version: got %q, want dev", d.version)
	}
}

func TestMCPRequest_Unmarshal(t *testing.T) {
	tests := []struct {
		name       string
		json       string
		wantID     interface{}
		wantMethod string
	}{
		{
			"string id",
			`{"jsonrpc":"2.0","id":"test-1","method":"tools/list"}`,
			"test-1",
			"tools/list",
		},
		{
			"number id",
			`{"jsonrpc":"2.0","id":42,"method":"ping"}`,
			float64(42), // JSON numbers decode as float64
			"ping",
		},
		{
			"null id",
			`{"jsonrpc":"2.0","id":null,"method":"initialize"}`,
			nil,
			"initialize",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req MCPRequest
			if err := json.Unmarshal([]byte(tt.json), &req); err != nil {
				t.Fatalf("Failed to unmarshal: %v", err)
			}

			if req.ID != tt.wantID {
				t.Errorf("ID: got %v (%T), want %v (%T)", req.ID, req.ID, tt.wantID, tt.wantID)
			}
			if req.Method != tt.wantMethod {
				t.Errorf("Method: got %s, want %s", req.Method, tt.wantMethod)
			}
		})
	}
}

func TestHandleRequest_Initialize(t *testing.T) {
	s := newTestServer(&fakeEngine{})
	resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: 1, Method: "initialize"})

	if resp == nil || resp.Error != nil {
		t.Fatalf("unexpected response: %+v", resp)
	}
	result := resp.Result.(map[string]interface{})
	if result["protocolVersion"] != "2024-11-05" {
		t.Errorf("protocolVersion: got %v", result["protocolVersion"])
	}
	info := result["serverInfo"].(map[string]interface{})
	if info["name"] != ServerName || info["version"] != "test" {
		t.Errorf("serverInfo: got %v", info)
	}
}

func TestHandleRequest_InitializedNotification(t *testing.T) {
	s := newTestServer(&fakeEngine{})
	if resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", Method: "notifications/initialized"}); resp != nil {
		t.Errorf("expected no response, got %+v", resp)
	}
}

func TestHandleRequest_Ping(t *testing.T) {
	s := newTestServer(&fakeEngine{})
	resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: "p", Method: "ping"})
	if resp == nil || resp.Error != nil {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.ID != "p" {
		t.Errorf("ID: got %v, want p", resp.ID)
	}
}

func TestHandleRequest_UnknownMethod(t *testing.T) {
	s := newTestServer(&fakeEngine{})
	resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: 7, Method: "resources/list"})
	if resp.Error == nil {
		t.Fatal("expected error")
	}
	if resp.Error.Code != -32601 {
		t.Errorf("Code: got %d, want -32601", resp.Error.Code)
	}
	if !strings.Contains(resp.Error.Message, "resources/list") {
		t.Errorf("Message: got %q", resp.Error.Message)
	}
}

func TestServe(t *testing.T) {
	s := newTestServer(&fakeEngine{})

	in := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
		`not json`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"label_normalize_text","arguments":{"text":"Proteln  5g"}}}`,
	}, "\n")

	var out bytes.Buffer
	if err := s.Serve(context.Background(), strings.NewReader(in), &out); err != nil {
		t.Fatalf("Serve: %v", err)
	}

	dec := json.NewDecoder(&out)
	var responses []MCPResponse
	for dec.More() {
		var resp MCPResponse
		if err := dec.Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		responses = append(responses, resp)
	}

	// initialize, parse error, tools/list, tools/call
	if len(responses) != 4 {
		t.Fatalf("got %d responses, want 4", len(responses))
	}
	if responses[1].Error == nil || responses[1].Error.Code != -32700 {
		t.Errorf("parse error response: got %+v", responses[1].Error)
	}
	if responses[3].Error != nil {
		t.Fatalf("tools/call error: %+v", responses[3].Error)
	}
	text := toolText(t, &responses[3])
	if !strings.Contains(text, `"text": "Protein 5g"`) {
		t.Errorf("normalized text missing from %s", text)
	}
}

func TestServe_CancelledContext(t *testing.T) {
	s := newTestServer(&fakeEngine{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := s.Serve(ctx, strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`+"\n"), &out)
	if err == nil {
		t.Fatal("expected context error")
	}
	if out.Len() != 0 {
		t.Errorf("expected no output, got %s", out.String())
	}
}

// toolText extracts the JSON text payload of a tools/call response.
func toolText(t *testing.T, resp *MCPResponse) string {
	t.Helper()

	raw, err := json.Marshal(resp.Result)
	if err != nil {
		t.Fatalf("marshal result: %v", err)
	}
	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if len(result.Content) != 1 || result.Content[0].Type != "text" {
		t.Fatalf("unexpected content: %+v", result.Content)
	}
	return result.Content[0].Text
}
