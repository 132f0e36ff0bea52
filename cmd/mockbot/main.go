// Command mockbot runs a minimal target bot to point the tester at during
// development: /start replies with a welcome message and an inline keyboard,
// button presses are acknowledged, anything else is echoed back.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

func main() {
	token := os.Getenv("MOCKBOT_TELEGRAM_TOKEN")
	if token == "" {
		log.Fatal("MOCKBOT_TELEGRAM_TOKEN is not set")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	b, err := bot.New(token, bot.WithDefaultHandler(handleUpdate))
	if err != nil {
		log.Fatalf("Error creating bot: %v", err)
	}

	log.Println("mockbot is running")
	b.Start(ctx)
}

func handleUpdate(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery != nil {
		handleCallback(ctx, b, update.CallbackQuery)
		return
	}
	if update.Message == nil {
		return
	}

	msg := update.Message
	switch msg.Text {
	case "/start":
		_, err := b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: msg.Chat.ID,
			Text:   "Welcome to mockbot! Pick an option below.",
			ReplyMarkup: &models.InlineKeyboardMarkup{
				InlineKeyboard: [][]models.InlineKeyboardButton{{
					{Text: "Help", CallbackData: "help"},
					{Text: "About", CallbackData: "about"},
				}},
			},
		})
		if err != nil {
			log.Printf("Error sending welcome: %v", err)
		}
	case "/help":
		sendText(ctx, b, msg.Chat.ID, "Available commands: /start, /help. Everything else is echoed.")
	default:
		sendText(ctx, b, msg.Chat.ID, "You said: "+msg.Text)
	}
}

func handleCallback(ctx context.Context, b *bot.Bot, q *models.CallbackQuery) {
	if _, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: q.ID,
	}); err != nil {
		log.Printf("Error answering callback: %v", err)
	}

	var text string
	switch q.Data {
	case "help":
		text = "Help: send /start to see the menu again."
	case "about":
		text = "mockbot exists to be tested."
	default:
		text = "Unknown button: " + q.Data
	}

	if q.Message.Message != nil {
		sendText(ctx, b, q.Message.Message.Chat.ID, text)
	}
}

func sendText(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		log.Printf("Error sending message: %v", err)
	}
}
