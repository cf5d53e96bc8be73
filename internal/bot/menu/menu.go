package menu

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

const (
	BtnReservations = "🍽 Réservations"
	BtnHistorique   = "🗓 Historique"
	BtnExport       = "📤 Export Excel"
	BtnAPIConfig    = "⚙️ Serveur API"
	BtnLogout       = "🚪 Déconnexion"
	BtnLogin        = "🔑 Connexion"
	BtnRegister     = "📝 Inscription"
)

// Main — clavier principal une fois connecté.
func Main() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnReservations),
			tgbotapi.NewKeyboardButton(BtnHistorique),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnExport),
			tgbotapi.NewKeyboardButton(BtnAPIConfig),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnLogout),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

// Anonymous — clavier avant connexion.
func Anonymous() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnLogin),
			tgbotapi.NewKeyboardButton(BtnRegister),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}
