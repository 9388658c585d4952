package services

import (
	"testing"

	"github.com/ahmetcoskunkizilkaya/marketplace-backend/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestScan(t *testing.T) {
	s := NewContentScanner(ScannerConfig{Terms: config.DefaultProhibitedTerms})

	tests := []struct {
		name        string
		title       string
		description string
		term        string
		found       bool
	}{
		{"clean", "Bicicleta de montaña", "Poco uso, muy buen estado", "", false},
		{"in title", "Venta de ARMAS antiguas", "", "arma", true},
		{"in description", "Reloj", "Es una replica exacta", "replica", true},
		{"accents stripped", "Reloj", "Réplica de lujo", "replica", true},
		{"list order wins", "droga y arma", "", "arma", true},
		{"substring match", "Robotica educativa", "", "robo", true},
		{"spans title and description", "ile", "gal", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term, found := s.Scan(tt.title, tt.description)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.term, term)
		})
	}
}

func TestScannerDropsEmptyTerms(t *testing.T) {
	s := NewContentScanner(ScannerConfig{Terms: []string{"", "  ", "Fraude"}})

	assert.Equal(t, []string{"Fraude"}, s.Terms())
	term, found := s.Scan("sin fraude", "")
	assert.True(t, found)
	assert.Equal(t, "Fraude", term)

	_, found = NewContentScanner(ScannerConfig{}).Scan("arma", "droga")
	assert.False(t, found)
}

func TestTermsReturnsCopy(t *testing.T) {
	s := NewContentScanner(ScannerConfig{Terms: []string{"arma"}})
	terms := s.Terms()
	terms[0] = "changed"
	assert.Equal(t, []string{"arma"}, s.Terms())
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "pirateria", Normalize("Piratería"))
	assert.Equal(t, "falsificacion", Normalize("FALSIFICACIÓN"))
	assert.Equal(t, "nino", Normalize("Niño"))

	for _, in := range []string{"Árbol", "ÉXITO total", "crème brûlée", "plain"} {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), in)
	}
}
