package steam

import (
	"encoding/json"
	"testing"

	"github.com/lborgatow/games-scraping/models"
)

func TestDetailFromPayload(t *testing.T) {
	raw := `{
		"success": true,
		"data": {
			"type": "game",
			"header_image": "https://cdn.example/h.jpg",
			"short_description": "A short description.",
			"genres": [{"id": "1", "description": "Ação"}, {"id": "23", "description": "Indie"}]
		}
	}`
	var payload appPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	got := detailFromPayload(payload, "10")

	if got.AppID != "10" || got.Type != "game" {
		t.Errorf("id/type = %q/%q", got.AppID, got.Type)
	}
	if got.Image != "https://cdn.example/h.jpg" {
		t.Errorf("image = %q", got.Image)
	}
	if got.Description != "A short description." {
		t.Errorf("description = %q", got.Description)
	}
	if len(got.Genres) != 2 || got.Genres[0] != "Ação" {
		t.Errorf("genres = %v", got.Genres)
	}
}

func TestDetailFromPayloadFailure(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"unsuccessful", `{"success": false}`},
		{"no data", `{"success": true}`},
		{"data is empty array", `{"success": true, "data": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var payload appPayload
			if err := json.Unmarshal([]byte(tt.raw), &payload); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}

			got := detailFromPayload(payload, "10")
			want := models.UnavailableDetail("10")

			if got.Type != want.Type || got.Description != want.Description || got.Image != want.Image {
				t.Errorf("got %+v, want the unavailable record", got)
			}
			if len(got.Genres) != 0 {
				t.Errorf("genres = %v, want empty", got.Genres)
			}
		})
	}
}

func TestDetailFromPayloadPartialData(t *testing.T) {
	raw := `{"success": true, "data": {"type": "game"}}`
	var payload appPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	got := detailFromPayload(payload, "10")

	if got.Type != "game" {
		t.Errorf("type = %q, want game", got.Type)
	}
	if got.Image != models.NoImage || got.Description != models.NoDescription {
		t.Errorf("missing fields should fall back to sentinels: %+v", got)
	}
}
