package main

import (
	"errors"

	"ledger_import/internal/services/importer/processors"
	"ledger_import/internal/transport/bot"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
)

func newBotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot that imports bank statements",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, a, err := bootstrap(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.close()

			if a.opts.Bot.Token == "" {
				return errors.New("TELEGRAM_TOKEN is empty")
			}
			api, err := tgbotapi.NewBotAPI(a.opts.Bot.Token)
			if err != nil {
				return err
			}
			api.Debug = a.opts.Bot.Debug
			a.log.Info().Str("account", api.Self.UserName).Msg("telegram authorized")

			return bot.New(api, a.importer, a.tempDir, processors.PaymentsTable).Run(ctx)
		},
	}
}
