package dataprocessing

import (
	"fmt"
	"unicode/utf16"
)

// DefaultSourceColor is used for pollsters without an assigned colour
const DefaultSourceColor = "#888888"

var sourceColors = map[string]string{
	"DATUM": "#3b82f6",
	"CPI":   "#ef4444",
	"IPSOS": "#22c55e",
	"IEP":   "#a855f7",
}

var candidateColors = map[string]string{
	"Rafael López Aliaga": "#1e40af",
	"Keiko Fujimori":      "#ea580c",
	"Carlos Álvarez":      "#0891b2",
	"Alfonso López Chau":  "#65a30d",
	"César Acuña":         "#ca8a04",
	"Mario Vizcarra":      "#db2777",
	"Yonhy Lescano":       "#7c3aed",
	"George Forsyth":      "#0d9488",
	"José Luna Gálvez":    "#e11d48",
	"Ricardo Belmont":     "#4f46e5",
	"Roberto Sánchez":     "#059669",
	"Vladimir Cerrón":     "#dc2626",
}

var parties = map[string]string{
	"Rafael López Aliaga": "Renovación Popular",
	"Keiko Fujimori":      "Fuerza Popular",
	"Carlos Álvarez":      "Perú País para Todos",
	"Alfonso López Chau":  "Ahora Nación",
	"César Acuña":         "Alianza para el Progreso",
	"Mario Vizcarra":      "Perú Primero",
	"Yonhy Lescano":       "Cooperación Popular",
	"George Forsyth":      "Somos Perú",
	"José Luna Gálvez":    "Podemos Perú",
	"Ricardo Belmont":     "Partido Cívico Obras",
	"Roberto Sánchez":     "Juntos por el Perú",
	"Vladimir Cerrón":     "Perú Libre",
}

// SourceColor returns the display colour of a pollster
func SourceColor(source string) string {
	if c, ok := sourceColors[source]; ok {
		return c
	}
	return DefaultSourceColor
}

// CandidateColor returns the display colour of a candidate. Unknown names
// get a stable hue derived from a string hash.
func CandidateColor(candidate string) string {
	if c, ok := candidateColors[candidate]; ok {
		return c
	}
	return fmt.Sprintf("hsl(%d, 60%%, 45%%)", hashHue(candidate))
}

// Party returns the party of a known candidate, or ""
func Party(candidate string) string {
	return parties[candidate]
}

// hashHue hashes UTF-16 code units with hash = c + (hash<<5) - hash, where
// the shift operates on the 32-bit wrapped value, and reduces it modulo
// 360 keeping the sign of the hash. The hue may be negative.
func hashHue(s string) int64 {
	var hash int64
	for _, unit := range utf16.Encode([]rune(s)) {
		shifted := int32(uint32(hash) << 5)
		hash = int64(unit) + int64(shifted) - hash
	}
	return hash % 360
}
