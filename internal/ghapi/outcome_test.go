package ghapi

import "testing"

func TestClassify(t *testing.T) {
	link := `<http://h/next>; rel="next"`

	tests := []struct {
		name     string
		resp     Response
		wantKind Kind
		wantNext string
		items    int
	}{
		{"forbidden", Response{Status: 403}, KindRateLimited, "", 0},
		{"too many requests", Response{Status: 429}, KindRateLimited, "", 0},
		{"network failure", Response{}, KindNetworkFailure, "", 0},
		{"not found", Response{Status: 404}, KindMalformed, "", 0},
		{"object body", Response{Status: 200, Body: map[string]any{}}, KindMalformed, "", 0},
		{"empty list", Response{Status: 200, Body: []any{}}, KindSuccess, "", 0},
		{"list with next", Response{Status: 200, Body: []any{1, 2}, Link: link}, KindSuccess, "http://h/next", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Classify(tt.resp, LinkHeader{})
			if out.Kind != tt.wantKind {
				t.Errorf("Kind = %s, want %s", out.Kind, tt.wantKind)
			}
			if out.Next != tt.wantNext {
				t.Errorf("Next = %q, want %q", out.Next, tt.wantNext)
			}
			if len(out.Items) != tt.items {
				t.Errorf("got %d items, want %d", len(out.Items), tt.items)
			}
		})
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindSuccess, "success"},
		{KindRateLimited, "rate_limited"},
		{KindMalformed, "malformed"},
		{KindNetworkFailure, "network_failure"},
		{Kind(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(tt.kind), got, tt.want)
		}
	}
}
