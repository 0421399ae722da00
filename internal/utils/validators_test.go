package utils

import (
	"testing"
	"time"
)

func TestValidateFecha(t *testing.T) {
	tests := []struct {
		name    string
		entrada string
		want    string // YYYY-MM-DD del resultado esperado
		wantErr bool
	}{
		{"formato canónico", "2026-08-29", "2026-08-29", false},
		{"planilla antigua", "29/08/2026", "2026-08-29", false},
		{"con espacios", "  2026-08-29 ", "2026-08-29", false},
		{"vacía", "", "", true},
		{"texto", "mañana", "", true},
		{"mes inválido", "2026-13-01", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fecha, err := ValidateFecha(tt.entrada)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateFecha(%q) error = %v, wantErr = %v", tt.entrada, err, tt.wantErr)
			}
			if err == nil && FechaCanonica(fecha) != tt.want {
				t.Errorf("ValidateFecha(%q) = %s, quiere %s", tt.entrada, FechaCanonica(fecha), tt.want)
			}
		})
	}
}

func TestValidateRango(t *testing.T) {
	desde, hasta, err := ValidateRango("2026-08-25", "2026-08-29")
	if err != nil {
		t.Fatalf("rango válido devolvió error: %v", err)
	}
	if hasta.Sub(desde) != 4*24*time.Hour {
		t.Errorf("el rango abarca %v, quiere 4 días", hasta.Sub(desde))
	}

	// Sin hasta, el rango es de un día.
	desde, hasta, err = ValidateRango("2026-08-25", "")
	if err != nil {
		t.Fatalf("rango de un día devolvió error: %v", err)
	}
	if !desde.Equal(hasta) {
		t.Error("sin 'hasta' el rango debe colapsar a un solo día")
	}

	// Invertido.
	if _, _, err = ValidateRango("2026-08-29", "2026-08-25"); err == nil {
		t.Error("un rango invertido debe rechazarse")
	}
}

func TestValidatePlataInicial(t *testing.T) {
	tests := []struct {
		entrada string
		want    float64
		wantErr bool
	}{
		{"10000", 10000, false},
		{"  2500.50 ", 2500.50, false},
		{"", 0, false}, // vacío significa sin plata inicial
		{"0", 0, false},
		{"-100", 0, true},
		{"diez mil", 0, true},
	}
	for _, tt := range tests {
		got, err := ValidatePlataInicial(tt.entrada)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePlataInicial(%q) error = %v, wantErr = %v", tt.entrada, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ValidatePlataInicial(%q) = %.2f, quiere %.2f", tt.entrada, got, tt.want)
		}
	}
}

func TestValidateEstadoPedido(t *testing.T) {
	for _, estado := range []string{"entregado", "pendiente", "devolucion", "reagendado", "cancelado"} {
		if err := ValidateEstadoPedido(estado); err != nil {
			t.Errorf("estado %q debe ser válido: %v", estado, err)
		}
	}
	if err := ValidateEstadoPedido("ENTREGADO"); err == nil {
		t.Error("los estados son sensibles a mayúsculas: 'ENTREGADO' debe rechazarse")
	}
	if err := ValidateEstadoPedido("perdido"); err == nil {
		t.Error("un estado desconocido debe rechazarse")
	}
}

func TestValidateMetodoPago(t *testing.T) {
	for _, metodo := range []string{"efectivo", "sinpe", "tarjeta", "2pagos", "sin_pago"} {
		if err := ValidateMetodoPago(metodo); err != nil {
			t.Errorf("método %q debe ser válido: %v", metodo, err)
		}
	}
	if err := ValidateMetodoPago("cheque"); err == nil {
		t.Error("un método desconocido debe rechazarse")
	}
}
