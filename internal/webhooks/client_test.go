package webhooks

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"magicstars/internal/constants"
)

func TestAddLiquidacionExitosa(t *testing.T) {
	var recibida AddLiquidacionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/webhook/add-liquidacion" {
			t.Errorf("ruta = %s, quiere /webhook/add-liquidacion", r.URL.Path)
		}
		if r.Header.Get("Idempotence-Key") == "" {
			t.Error("falta el encabezado Idempotence-Key")
		}
		if err := json.NewDecoder(r.Body).Decode(&recibida); err != nil {
			t.Errorf("cuerpo ilegible: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	err := c.AddLiquidacion(context.Background(), AddLiquidacionRequest{
		Mensajero:  "ANA",
		Fecha:      "2026-08-29",
		MontoFinal: 14000,
	})
	if err != nil {
		t.Fatalf("AddLiquidacion devolvió error: %v", err)
	}
	if recibida.Mensajero != "ANA" || recibida.Fecha != "2026-08-29" {
		t.Errorf("el webhook recibió %+v", recibida)
	}
}

// La violación de unicidad del ledger debe traducirse a ErrYaLiquidada sin
// importar el campo JSON en que venga ni el código de estado.
func TestAddLiquidacionDuplicada(t *testing.T) {
	cuerpos := []struct {
		name   string
		status int
		body   string
	}{
		{"en message", http.StatusInternalServerError,
			`{"message":"ERROR: duplicate key value violates unique constraint \"liquidaciones_mensajero_fecha_key\""}`},
		{"en error", http.StatusConflict,
			`{"error":"duplicate key value violates unique constraint"}`},
		{"texto crudo", http.StatusBadRequest,
			`duplicate key value violates unique constraint "liquidaciones_pkey"`},
	}

	for _, tt := range cuerpos {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL)
			err := c.AddLiquidacion(context.Background(), AddLiquidacionRequest{Mensajero: "ANA", Fecha: "2026-08-29"})
			if !errors.Is(err, ErrYaLiquidada) {
				t.Errorf("quiere ErrYaLiquidada, devolvió: %v", err)
			}
		})
	}
}

func TestAddLiquidacionErrorDistinto(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"workflow execution failed"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	err := c.AddLiquidacion(context.Background(), AddLiquidacionRequest{Mensajero: "ANA", Fecha: "2026-08-29"})
	if err == nil {
		t.Fatal("un error distinto al duplicado debe propagarse")
	}
	if errors.Is(err, ErrYaLiquidada) {
		t.Error("un error genérico no debe clasificarse como ya-liquidada")
	}
}

func TestCheckLiquidacion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ya_liquidado":true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	yaLiquidada, err := c.CheckLiquidacion(context.Background(), "ANA", "2026-08-29")
	if err != nil {
		t.Fatalf("CheckLiquidacion devolvió error: %v", err)
	}
	if !yaLiquidada {
		t.Error("quiere ya_liquidado = true")
	}
}

func TestCheckLiquidacionRespuestaIlegible(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("esto no es JSON"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.CheckLiquidacion(context.Background(), "ANA", "2026-08-29"); err == nil {
		t.Fatal("una respuesta ilegible debe devolver error")
	}
}

func TestGetLiquidacionesVencidas(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" {
			t.Errorf("método = %s, quiere GET", r.Method)
		}
		w.Write([]byte(`[{"fecha":"2026-08-25","mensajero":"CARLOS","total_recaudado":12000,"ya_liquidado":false}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	vencidas, err := c.GetLiquidacionesVencidas(context.Background())
	if err != nil {
		t.Fatalf("GetLiquidacionesVencidas devolvió error: %v", err)
	}
	if len(vencidas) != 1 || vencidas[0].Mensajero != "CARLOS" {
		t.Errorf("respuesta inesperada: %+v", vencidas)
	}
}

func TestGenerarRutas(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
	}{
		{"frase de éxito", http.StatusOK, "Rutas generadas para 8 mensajeros", false},
		{"éxito en mayúsculas", http.StatusOK, "RUTAS GENERADAS", false},
		{"200 sin frase de éxito", http.StatusOK, "no hay pedidos para asignar", true},
		{"error del flujo", http.StatusInternalServerError, `{"message":"workflow failed"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL)
			_, err := c.GenerarRutas(context.Background(), "2026-08-29", 25)
			if (err != nil) != tt.wantErr {
				t.Errorf("GenerarRutas error = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}

func TestEsRespuestaExitosaRuta(t *testing.T) {
	tests := []struct {
		respuesta string
		want      bool
	}{
		{"Rutas generadas para 8 mensajeros", true},
		{"reasignación completada", true},
		{"Reasignacion completada sin tildes", true},
		{`{"status":"success"}`, true},
		{"no hay pedidos para asignar", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := EsRespuestaExitosaRuta(tt.respuesta); got != tt.want {
			t.Errorf("EsRespuestaExitosaRuta(%q) = %v, quiere %v", tt.respuesta, got, tt.want)
		}
	}
}

func TestExtraerMensajeError(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"campo message", `{"message":"algo falló"}`, "algo falló"},
		{"campo error", `{"error":"otra cosa falló"}`, "otra cosa falló"},
		{"texto crudo", "fallo sin formato", "fallo sin formato"},
		{"cuerpo vacío", "", "sin detalle"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extraerMensajeError([]byte(tt.body)); got != tt.want {
				t.Errorf("extraerMensajeError = %q, quiere %q", got, tt.want)
			}
		})
	}
}

func TestClasificarErrorLedger(t *testing.T) {
	err := clasificarErrorLedger(500, []byte(`{"message":"`+constants.DUPLICATE_KEY_MARKER+`"}`))
	if !errors.Is(err, ErrYaLiquidada) {
		t.Errorf("el marcador de duplicado debe clasificarse como ErrYaLiquidada, devolvió: %v", err)
	}

	err = clasificarErrorLedger(500, []byte(`{"message":"otro error"}`))
	if errors.Is(err, ErrYaLiquidada) {
		t.Error("un error sin el marcador no debe clasificarse como ya-liquidada")
	}
}
