package pipeline

import "testing"

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"```json\n[1,2]\n```", "[1,2]"},
		{"```JSON\n[1,2]\n```", "[1,2]"},
		{"```javascript\n[1,2]\n```", "[1,2]"},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{`{"a":1}`, `{"a":1}`},
		{"  ```json\n{}\n```  ", "{}"},
		{"```{\"a\":1}\n```", `{"a":1}`},
		{"plain text", "plain text"},
	}
	for _, tc := range cases {
		if got := stripCodeFences(tc.in); got != tc.want {
			t.Errorf("stripCodeFences(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestExtractJSONObject(t *testing.T) {
	body, ok := extractJSONObject(`Here you go: {"labs": {"hb": 12}} hope that helps`)
	if !ok {
		t.Fatal("expected to find object")
	}
	if body != `{"labs": {"hb": 12}}` {
		t.Errorf("unexpected body: %q", body)
	}

	if _, ok := extractJSONObject("no json here"); ok {
		t.Error("expected no object in plain text")
	}
}

func TestExtractJSONArray(t *testing.T) {
	body, ok := extractJSONArray("Tasks:\n[{\"title\": \"A\"}]\nDone.")
	if !ok {
		t.Fatal("expected to find array")
	}
	if body != `[{"title": "A"}]` {
		t.Errorf("unexpected body: %q", body)
	}

	if _, ok := extractJSONArray("] backwards ["); ok {
		t.Error("expected no array when brackets are reversed")
	}
}
