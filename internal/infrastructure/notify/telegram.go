// Package notify envía alertas operativas a Telegram. Entrega best-effort:
// los fallos se registran y nunca se propagan al flujo que alertó.
package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jhoicas/Terminal-wms/pkg/config"
	"github.com/jhoicas/Terminal-wms/pkg/logger"
)

// Notifier sink de alertas. Con configuración vacía queda deshabilitado y
// todos los métodos son no-op.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    *logger.Logger
}

// New crea el notificador. Si falta el token o el chat devuelve uno
// deshabilitado en vez de error: las alertas son opcionales.
func New(cfg config.TelegramConfig, log *logger.Logger) *Notifier {
	n := &Notifier{log: log.WithComponent("notify")}
	if cfg.BotToken == "" || cfg.ChatID == 0 {
		log.Info().Msg("notificaciones Telegram deshabilitadas")
		return n
	}
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Error().Err(err).Msg("no se pudo inicializar el bot de Telegram")
		return n
	}
	n.bot = bot
	n.chatID = cfg.ChatID
	return n
}

func (n *Notifier) send(text string) {
	if n.bot == nil {
		return
	}
	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := n.bot.Send(msg); err != nil {
		n.log.Error().Err(err).Msg("fallo enviando alerta a Telegram")
	}
}

// BatchFailed alerta de lote revertido.
func (n *Notifier) BatchFailed(localID int64, opType, details string) {
	n.send(fmt.Sprintf("⚠️ <b>Lote revertido</b>\nOperación %d (%s)\n%s", localID, opType, details))
}

// InsufficientStock alerta de rechazo por stock insuficiente.
func (n *Notifier) InsufficientStock(productID int64, available, requested string) {
	n.send(fmt.Sprintf("📦 <b>Stock insuficiente</b>\nProducto %d\nDisponible: %s\nSolicitado: %s",
		productID, available, requested))
}
