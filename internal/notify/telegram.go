// Archivo: internal/notify/telegram.go
//
// Notificaciones salientes de Telegram hacia el chat de contabilidad. El bot
// solo envía: el dashboard no procesa updates entrantes.
package notify

import (
	"fmt"
	"log"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"magicstars/internal/models"
	"magicstars/internal/utils"
)

// Notifier envuelve el bot de Telegram. Un Notifier nil es válido y descarta
// todo en silencio, para correr sin token en desarrollo.
type Notifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// InitNotifier inicializa el bot de notificaciones de contabilidad.
func InitNotifier(token string, chatID int64, debug bool) (*Notifier, error) {
	if token == "" || chatID == 0 {
		return nil, fmt.Errorf("token de Telegram o chat de contabilidad no configurados")
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("error al inicializar el bot de Telegram: %w", err)
	}
	api.Debug = debug

	log.Printf("Bot de notificaciones autorizado como %s.", api.Self.UserName)
	return &Notifier{api: api, chatID: chatID}, nil
}

func (n *Notifier) enviar(texto string) {
	if n == nil || n.api == nil {
		return
	}
	msg := tgbotapi.NewMessage(n.chatID, texto)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := n.api.Send(msg); err != nil {
		// Una notificación caída no debe afectar la operación que la originó.
		log.Printf("notify: error al enviar mensaje a contabilidad: %v", err)
	}
}

// LiquidacionConfirmada avisa a contabilidad que un día quedó liquidado.
func (n *Notifier) LiquidacionConfirmada(liq *models.Liquidacion) {
	if n == nil {
		return
	}
	texto := fmt.Sprintf(
		"✅ *Liquidación confirmada*\nMensajero: %s\nFecha: %s\nTotal recaudado: %s\nEfectivo: %s | SINPE: %s | Tarjeta: %s\nGastos: %s\nMonto final: %s",
		liq.Mensajero, liq.Fecha,
		utils.FormatColones(liq.TotalRecaudado),
		utils.FormatColones(liq.PagosEfectivo),
		utils.FormatColones(liq.PagosSinpe),
		utils.FormatColones(liq.PagosTarjeta),
		utils.FormatColones(liq.TotalGastos),
		utils.FormatColones(liq.MontoFinal),
	)
	n.enviar(texto)
}

// RutasGeneradas avisa que se generaron las rutas del día.
func (n *Notifier) RutasGeneradas(fecha string, capacidad int) {
	if n == nil {
		return
	}
	n.enviar(fmt.Sprintf("🛵 *Rutas generadas* para %s (capacidad %d por mensajero).", fecha, capacidad))
}

// RutaReasignada avisa de una reasignación de ruta.
func (n *Notifier) RutaReasignada(anterior, nuevo, fecha string) {
	if n == nil {
		return
	}
	n.enviar(fmt.Sprintf("🔁 *Ruta reasignada* el %s: %s → %s.", fecha, anterior, nuevo))
}
