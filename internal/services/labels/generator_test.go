package labels

import (
	"bytes"
	"testing"

	"github.com/livrex-com/livrexgo/internal/models"
)

func TestGenerateDeliveryLabel(t *testing.T) {
	commande := &models.Commande{
		ID:               "cmd-001",
		NumeroCommande:   "CMD20260829-AB12",
		ClientNom:        "Claire Dubois",
		ClientTelephone:  "+33 6 98 76 54 01",
		ClientAdresse:    "25 rue de la République, 75011 Paris",
		DateLivraison:    "2026-08-29",
		CreneauLivraison: "09:00-11:00",
		Montant:          48.90,
	}

	pdf, err := GenerateDeliveryLabel(commande)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Error("output should be a PDF document")
	}
	if len(pdf) < 1000 {
		t.Errorf("suspiciously small PDF: %d bytes", len(pdf))
	}
}

func TestGenerateDeliveryLabelTemporaryOrder(t *testing.T) {
	commande := &models.Commande{
		ID:             "temp_abc",
		NumeroCommande: "temp_abc123",
		ClientNom:      "Henri Moreau",
		DateLivraison:  "2026-08-30",
	}

	pdf, err := GenerateDeliveryLabel(commande)
	if err != nil {
		t.Fatalf("a temporary order must still be printable: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Error("output should be a PDF document")
	}
}

func TestGenerateDeliveryLabelNil(t *testing.T) {
	if _, err := GenerateDeliveryLabel(nil); err == nil {
		t.Error("nil commande should be rejected")
	}
}
