// aiprobe sends one query to the configured AI endpoint and prints the
// references the bot would resolve.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"quran-irc-bot/internal/config"
	"quran-irc-bot/internal/constant"
	"quran-irc-bot/internal/pkg/logger"
	"quran-irc-bot/pkg/ai/query"
	"quran-irc-bot/pkg/clock"
	"quran-irc-bot/pkg/llm/factory"

	"github.com/fatih/color"
)

func main() {
	if len(os.Args) < 2 {
		color.Red("Usage: aiprobe <query>")
		os.Exit(2)
	}
	text := strings.Join(os.Args[1:], " ")

	cfg := config.Load()
	provider, err := factory.NewLLMProvider(cfg.Ai.Provider, cfg.Ai.APIKey, cfg.Ai.APIURL, cfg.Ai.Model)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}

	client := query.NewClient(provider, clock.Real{}, logger.NewConsoleLogger(), query.Config{
		MaxAttempts:    cfg.Ai.MaxAttempts,
		AttemptTimeout: cfg.Ai.AttemptTimeout,
		BackoffUnit:    time.Second,
		SystemPrompt:   constant.QuranSystemPrompt,
	})

	color.Cyan("Query: %s", text)
	result := client.Query(context.Background(), text)

	if result.Status != query.StatusOK {
		color.Red("Status: %s after %d attempt(s)", result.Status, result.Attempts)
		os.Exit(1)
	}
	color.Green("Status: %s after %d attempt(s)", result.Status, result.Attempts)

	color.Yellow("\nRaw answer")
	fmt.Println(result.RawText)

	direction := "LTR"
	if result.Response.RTL {
		direction = "RTL"
	}
	color.Yellow("\nLanguage: %s (%s, table %s)", result.Response.Language, direction, constant.TranslationTable(result.Response.Language))

	if len(result.Response.References) == 0 {
		color.Red("No references found")
		return
	}
	refs := make([]string, len(result.Response.References))
	for i, ref := range result.Response.References {
		refs[i] = ref.String()
	}
	color.Yellow("References (%d)", len(refs))
	fmt.Println(strings.Join(refs, ", "))
}
