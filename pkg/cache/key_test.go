package cache

import (
	"net/url"
	"testing"
)

func TestKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want string
	}{
		{
			name: "simple endpoint no params",
			key:  Key{Endpoint: "/health"},
			want: "twin:health",
		},
		{
			name: "trailing slash trimmed",
			key:  Key{Endpoint: "/rag/stats/"},
			want: "twin:rag/stats",
		},
		{
			name: "query params",
			key: Key{
				Endpoint: "/mem/memories",
				Query:    url.Values{"limit": []string{"100"}},
			},
			want: "twin:mem/memories:limit=100",
		},
		{
			name: "multiple query params (sorted)",
			key: Key{
				Endpoint: "/mem/memories",
				Query: url.Values{
					"offset": []string{"10"},
					"limit":  []string{"5"},
				},
			},
			want: "twin:mem/memories:limit=5:offset=10",
		},
		{
			name: "repeated query values",
			key: Key{
				Endpoint: "/rag/documents",
				Query:    url.Values{"tag": []string{"a", "b"}},
			},
			want: "twin:rag/documents:tag=a,b",
		},
		{
			name: "empty endpoint",
			key:  Key{},
			want: "twin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKey_Deterministic(t *testing.T) {
	key := Key{
		Endpoint: "/mem/memories",
		Query: url.Values{
			"c": []string{"3"},
			"a": []string{"1"},
			"b": []string{"2"},
		},
	}

	first := key.String()
	for i := 0; i < 50; i++ {
		if got := key.String(); got != first {
			t.Fatalf("String() = %q, want %q", got, first)
		}
	}
}
