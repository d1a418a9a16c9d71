package ai

import "testing"

func TestFallbackGuessKeywordMatching(t *testing.T) {
	cases := []struct {
		name         string
		wantCategory string
	}{
		{"USB-C Cable 2m", "Cables & Adapters"},
		{"Carregador Turbo 20W", "Chargers & Power"},
		{"Fone Bluetooth", "Audio"},
		{"Capinha iPhone 15", "Cases & Protection"},
		{"Pelicula de vidro", "Cases & Protection"},
		{"Teclado mecanico", "Peripherals"},
		{"Mystery Box", "General"},
	}

	for _, tc := range cases {
		got := FallbackGuess(tc.name)
		if got.Category != tc.wantCategory {
			t.Errorf("FallbackGuess(%q).Category = %q, want %q", tc.name, got.Category, tc.wantCategory)
		}
		if got.Name != tc.name {
			t.Errorf("FallbackGuess(%q).Name = %q, want input name kept", tc.name, got.Name)
		}
		if got.Price <= 0 || got.Cost <= 0 {
			t.Errorf("FallbackGuess(%q) produced non-positive pricing: %+v", tc.name, got)
		}
	}
}

func TestFallbackGuessIsDeterministic(t *testing.T) {
	first := FallbackGuess("HDMI cable")
	second := FallbackGuess("HDMI cable")
	if first != second {
		t.Fatalf("fallback not deterministic: %+v vs %+v", first, second)
	}
}

func TestFallbackGuessEmptyName(t *testing.T) {
	got := FallbackGuess("  ")
	if got.Name != "New Product" {
		t.Errorf("empty name should produce placeholder, got %q", got.Name)
	}
	if got.Category != "General" {
		t.Errorf("empty name should fall into General, got %q", got.Category)
	}
}

func TestAnalyzeRequiresSomeInput(t *testing.T) {
	result := Analyze(t.Context(), "", AnalyzeRequest{})
	if result.Success || result.Error == "" {
		t.Fatalf("expected an input error, got %+v", result)
	}
}

func TestAnalyzeWithoutKeyUsesFallback(t *testing.T) {
	result := Analyze(t.Context(), "", AnalyzeRequest{ProductName: "usb cable"})
	if !result.Success {
		t.Fatalf("expected fallback success, got %+v", result)
	}
	if result.Warning == "" {
		t.Error("expected a warning when credentials are missing")
	}
	if result.ProductData.Category != "Cables & Adapters" {
		t.Errorf("category = %q, want keyword match", result.ProductData.Category)
	}
}
