package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourceColor(t *testing.T) {
	assert.Equal(t, "#3b82f6", SourceColor("DATUM"))
	assert.Equal(t, "#ef4444", SourceColor("CPI"))
	assert.Equal(t, "#22c55e", SourceColor("IPSOS"))
	assert.Equal(t, "#a855f7", SourceColor("IEP"))
	assert.Equal(t, DefaultSourceColor, SourceColor("Vox Populi"))
	assert.Equal(t, DefaultSourceColor, SourceColor("datum"), "lookup is case sensitive")
}

func TestCandidateColor(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		want      string
	}{
		{"known candidate", "Keiko Fujimori", "#ea580c"},
		{"single letter", "A", "hsl(65, 60%, 45%)"},
		{"two letters", "AB", "hsl(281, 60%, 45%)"},
		{"non ascii name", "María del Carmen Alva", "hsl(241, 60%, 45%)"},
		{"negative hue kept", "Juan Pérez", "hsl(-154, 60%, 45%)"},
		{"wrapped hash", "Nuevo Candidato", "hsl(-316, 60%, 45%)"},
		{"empty name", "", "hsl(0, 60%, 45%)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CandidateColor(tt.candidate))
		})
	}
}

func TestCandidateColor_Stable(t *testing.T) {
	assert.Equal(t, CandidateColor("Phillip Butters"), CandidateColor("Phillip Butters"))
	assert.NotEqual(t, CandidateColor("Phillip Butters"), CandidateColor("Hernando de Soto"))
}

func TestParty(t *testing.T) {
	assert.Equal(t, "Renovación Popular", Party("Rafael López Aliaga"))
	assert.Equal(t, "Perú Libre", Party("Vladimir Cerrón"))
	assert.Empty(t, Party("Unknown Person"))
}
