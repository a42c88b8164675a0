package structured

import "testing"

func TestStripCodeFence(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", `{"a":1}`, `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  ```json\n{\"a\":1}\n```  ", `{"a":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripCodeFence(tc.in); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestUnmarshalLenientRepairsMalformedJSON(t *testing.T) {
	var out struct {
		Status string `json:"status"`
	}
	// Trailing comma and unterminated object, typical LLM damage.
	if err := UnmarshalLenient([]byte(`{"status": "success",`), &out); err != nil {
		t.Fatalf("UnmarshalLenient: %v", err)
	}
	if out.Status != "success" {
		t.Fatalf("got %q, want success", out.Status)
	}
}

func TestUnmarshalLenientValidJSON(t *testing.T) {
	var out map[string]int
	if err := UnmarshalLenient([]byte(`{"a": 1}`), &out); err != nil {
		t.Fatalf("UnmarshalLenient: %v", err)
	}
	if out["a"] != 1 {
		t.Fatalf("got %v", out)
	}
}
