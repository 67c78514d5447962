package codec

import "testing"

func TestRoundTrip(t *testing.T) {
	type payload struct {
		Name  string         `json:"name"`
		Score float64        `json:"score"`
		Tags  []string       `json:"tags"`
		Meta  map[string]any `json:"meta"`
	}

	in := payload{
		Name:  "stable-diffusion-xl",
		Score: 0.92,
		Tags:  []string{"checkpoint", "sdxl"},
		Meta:  map[string]any{"base": "SDXL 1.0"},
	}

	for _, c := range []Codec{JSON{}, GoJSON{}} {
		t.Run(c.Name(), func(t *testing.T) {
			data, err := c.Marshal(in)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}

			var out payload
			if err := c.Unmarshal(data, &out); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}

			if out.Name != in.Name || out.Score != in.Score {
				t.Errorf("Expected %+v, got %+v", in, out)
			}
			if len(out.Tags) != len(in.Tags) {
				t.Errorf("Expected %d tags, got %d", len(in.Tags), len(out.Tags))
			}
		})
	}
}

func TestWireCompatibility(t *testing.T) {
	// Files written with one JSON codec must decode with the other.
	data, err := GoJSON{}.Marshal(map[string]int{"layers": 12})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var out map[string]int
	if err := (JSON{}).Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if out["layers"] != 12 {
		t.Errorf("Expected 12, got %d", out["layers"])
	}
}

func TestByName(t *testing.T) {
	tests := []struct {
		name  string
		known bool
	}{
		{"json", true},
		{"go-json", true},
		{"msgpack", false},
		{"", false},
	}

	for _, tt := range tests {
		c, ok := ByName(tt.name)
		if ok != tt.known {
			t.Errorf("ByName(%q): expected known=%v, got %v", tt.name, tt.known, ok)
			continue
		}
		if ok && c.Name() != tt.name {
			t.Errorf("ByName(%q) returned codec named %q", tt.name, c.Name())
		}
	}
}

func TestMarshalUnsupportedValue(t *testing.T) {
	for _, c := range []Codec{JSON{}, GoJSON{}} {
		if _, err := c.Marshal(make(chan int)); err == nil {
			t.Errorf("%s: expected error for channel value", c.Name())
		}
	}
}
