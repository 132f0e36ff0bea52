package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// runInteractive is the manual single-step mode: each input line is sent to
// the target bot and the reply printed. The last reply's inline keyboard can
// be listed and pressed by index.
func runInteractive(ctx context.Context, client BotClient, clock Clock, timeout time.Duration) error {
	divider := strings.Repeat("=", 60)
	fmt.Println(divider)
	fmt.Println("Interactive mode")
	fmt.Println(divider)
	fmt.Println("Commands:")
	fmt.Println("  /command     - Send a command to the bot")
	fmt.Println("  !buttons     - Show buttons from the last response")
	fmt.Println("  !click N     - Click button N from the last response")
	fmt.Println("  !quit        - Exit interactive mode")
	fmt.Println(divider)

	scanner := bufio.NewScanner(os.Stdin)
	var last *Inbound

	for {
		fmt.Print("You> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
			continue

		case line == "!quit":
			fmt.Println("Goodbye!")
			return nil

		case line == "!buttons":
			if last == nil || !last.HasButtons() {
				fmt.Println("No previous response with buttons")
				continue
			}
			fmt.Println("Buttons:")
			for i, btn := range last.Buttons {
				fmt.Printf("  [%d] %s\n", i, btn.Text)
			}

		case strings.HasPrefix(line, "!click "):
			idx, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "!click ")))
			if err != nil {
				fmt.Println("Usage: !click N (where N is a button index)")
				continue
			}
			if last == nil || idx < 0 || idx >= len(last.Buttons) {
				fmt.Printf("Button %d not found\n", idx)
				continue
			}
			btn := last.Buttons[idx]
			fmt.Printf("Clicking button: %s\n", btn.Text)
			drainInbound(client)
			if err := client.PressButton(ctx, last.MessageID, btn); err != nil {
				return err
			}
			last = printReply(ctx, client, clock, timeout, last)

		default:
			drainInbound(client)
			if err := client.SendText(ctx, line); err != nil {
				return err
			}
			last = printReply(ctx, client, clock, timeout, last)
		}
	}
}

// printReply waits for the bot's next reply and prints it, keeping the
// previous reply when none arrives.
func printReply(ctx context.Context, client BotClient, clock Clock, timeout time.Duration, prev *Inbound) *Inbound {
	in, ok, err := awaitInbound(ctx, client, clock, timeout)
	if err != nil {
		fmt.Printf("Bot> [error: %v]\n", err)
		return prev
	}
	if !ok {
		fmt.Println("Bot> [no response]")
		return prev
	}

	text := in.Text
	if text == "" {
		text = "[no text]"
	}
	fmt.Printf("Bot> %s\n", text)
	if in.HasButtons() {
		fmt.Println("     [Message has inline buttons - use !buttons to see]")
	}
	return &in
}
