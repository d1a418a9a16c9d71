package ai

import "strings"

// fallbackRule maps name keywords to a product guess. Rules are checked in
// order; the first match wins, so the output is fully deterministic.
type fallbackRule struct {
	keywords []string
	guess    ProductData
}

var fallbackRules = []fallbackRule{
	{
		keywords: []string{"cable", "cabo", "usb", "hdmi"},
		guess: ProductData{
			Description: "Data/charging cable",
			Category:    "Cables & Adapters",
			Brand:       "Generic",
			Price:       29.90,
			Cost:        15.00,
		},
	},
	{
		keywords: []string{"charger", "carregador", "power bank", "powerbank"},
		guess: ProductData{
			Description: "Charging accessory",
			Category:    "Chargers & Power",
			Brand:       "Generic",
			Price:       49.90,
			Cost:        25.00,
		},
	},
	{
		keywords: []string{"headphone", "earbud", "fone", "headset"},
		guess: ProductData{
			Description: "Audio accessory",
			Category:    "Audio",
			Brand:       "Generic",
			Price:       89.90,
			Cost:        45.00,
		},
	},
	{
		keywords: []string{"case", "capa", "capinha", "cover"},
		guess: ProductData{
			Description: "Protective case",
			Category:    "Cases & Protection",
			Brand:       "Generic",
			Price:       39.90,
			Cost:        18.00,
		},
	},
	{
		keywords: []string{"screen", "pelicula", "película", "glass"},
		guess: ProductData{
			Description: "Screen protector",
			Category:    "Cases & Protection",
			Brand:       "Generic",
			Price:       19.90,
			Cost:        8.00,
		},
	},
	{
		keywords: []string{"mouse", "keyboard", "teclado"},
		guess: ProductData{
			Description: "Computer peripheral",
			Category:    "Peripherals",
			Brand:       "Generic",
			Price:       59.90,
			Cost:        30.00,
		},
	},
}

var fallbackDefault = ProductData{
	Description: "General merchandise",
	Category:    "General",
	Brand:       "Generic",
	Price:       19.90,
	Cost:        10.00,
}

// FallbackGuess synthesizes product data from keyword matching on the name.
// Pure and deterministic: the same name always produces the same guess.
func FallbackGuess(name string) ProductData {
	guess := fallbackDefault
	lower := strings.ToLower(name)

	for _, rule := range fallbackRules {
		matched := false
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				matched = true
				break
			}
		}
		if matched {
			guess = rule.guess
			break
		}
	}

	guess.Name = strings.TrimSpace(name)
	if guess.Name == "" {
		guess.Name = "New Product"
	}
	return guess
}
