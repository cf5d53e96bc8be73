package fsmutil

import (
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/emigresto/telegram-resto-bot/internal/metrics"
)

// pending — garde anti double-clic pendant une action "lourde" (mutation
// réseau en vol). Clé: chatID; valeur: clé de contexte ("grid:toggle"...).
var pending = struct {
	mu sync.Mutex
	m  map[int64]string
}{
	m: make(map[int64]string),
}

// SetPending marque le chat comme occupé pour key. Retourne false si une
// action est déjà en cours: l'appelant ne doit pas en lancer une autre.
func SetPending(chatID int64, key string) bool {
	pending.mu.Lock()
	defer pending.mu.Unlock()

	if _, ok := pending.m[chatID]; ok {
		return false
	}
	pending.m[chatID] = key
	return true
}

// ClearPending lève le drapeau si la clé correspond.
func ClearPending(chatID int64, key string) {
	pending.mu.Lock()
	defer pending.mu.Unlock()

	if cur, ok := pending.m[chatID]; ok && cur == key {
		delete(pending.m, chatID)
	}
}

// DisableMarkup éteint le clavier inline d'un message (one-shot) pour
// empêcher les clics répétés pendant qu'une requête est en vol.
func DisableMarkup(bot *tgbotapi.BotAPI, chatID int64, messageID int) {
	empty := tgbotapi.InlineKeyboardMarkup{InlineKeyboard: make([][]tgbotapi.InlineKeyboardButton, 0)}
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, empty)
	if _, err := bot.Send(edit); err != nil {
		metrics.HandlerErrors.Inc()
	}
}

// BackCancelRow — rangée "Retour / Annuler" prête à l'emploi.
func BackCancelRow(backData, cancelData string) []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Retour", backData),
		tgbotapi.NewInlineKeyboardButtonData("❌ Annuler", cancelData),
	)
}

// IsCancelText — annulation "textuelle" sur les étapes de saisie libre.
func IsCancelText(s string) bool {
	s = strings.TrimSpace(strings.ToLower(s))
	return s == "annuler" || s == "/cancel" || s == "cancel"
}
