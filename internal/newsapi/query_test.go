package newsapi

import (
	"testing"
)

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name    string
		ticker  string
		aliases []string
		want    string
	}{
		{
			name:    "single word aliases",
			ticker:  "NVDA",
			aliases: []string{"NVDA", "NVIDIA"},
			want:    "NVDA OR NVIDIA",
		},
		{
			name:    "multi word alias quoted",
			ticker:  "NVDA",
			aliases: []string{"NVDA", "NVIDIA", "NVIDIA Corporation"},
			want:    `NVDA OR NVIDIA OR "NVIDIA Corporation"`,
		},
		{
			name:    "blank aliases skipped",
			ticker:  "MELI",
			aliases: []string{"MELI", "  ", "", "MercadoLibre"},
			want:    "MELI OR MercadoLibre",
		},
		{
			name:    "empty set falls back to ticker",
			ticker:  "ypf",
			aliases: nil,
			want:    "YPF",
		},
		{
			name:    "all blank falls back to ticker",
			ticker:  "YPF",
			aliases: []string{"", "   "},
			want:    "YPF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildQuery(tt.ticker, tt.aliases); got != tt.want {
				t.Errorf("BuildQuery() = %q, want %q", got, tt.want)
			}
		})
	}
}
