package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"

	"ledger_import/internal/logger"
	"ledger_import/internal/services/importer"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	XLSXMime = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	GreetingText  = "Welcome! Send an .xlsx bank statement to upload payments."
	SuccessText   = "File processed and data uploaded."
	FailurePrefix = "An error occurred: "
)

// API is the part of tgbotapi.BotAPI the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type Importer interface {
	Import(ctx context.Context, req importer.Request) (importer.Result, error)
}

// Bot imports every xlsx document it receives as one independent run.
type Bot struct {
	API        API
	Importer   Importer
	HTTP       *http.Client
	TempDir    string
	ImportType string

	wg sync.WaitGroup
}

func New(api API, imp Importer, tempDir, importType string) *Bot {
	return &Bot{
		API:        api,
		Importer:   imp,
		HTTP:       &http.Client{},
		TempDir:    tempDir,
		ImportType: importType,
	}
}

// Run long-polls for updates until ctx is done, then waits for in-flight
// uploads to finish.
func (b *Bot) Run(ctx context.Context) error {
	log := logger.Component(ctx, "bot")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.API.GetUpdatesChan(u)
	log.Info().Msg("polling started")

	defer b.wg.Wait()
	for {
		select {
		case <-ctx.Done():
			b.API.StopReceivingUpdates()
			log.Info().Msg("polling stopped")
			return nil
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				b.Handle(ctx, upd)
			}()
		}
	}
}

func (b *Bot) Handle(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil {
		return
	}

	switch {
	case msg.IsCommand() && msg.Command() == "start":
		b.reply(ctx, msg, GreetingText)
	case msg.Document != nil && msg.Document.MimeType == XLSXMime:
		b.handleDocument(ctx, msg)
	}
}

func (b *Bot) handleDocument(ctx context.Context, msg *tgbotapi.Message) {
	log := logger.Component(ctx, "bot")
	doc := msg.Document

	path, err := b.download(ctx, doc.FileID)
	if path != "" {
		defer os.Remove(path)
	}
	if err != nil {
		log.Error().Err(err).Str("file_id", doc.FileID).Msg("download failed")
		b.reply(ctx, msg, FailurePrefix+err.Error())
		return
	}

	res, err := b.Importer.Import(ctx, importer.Request{
		Type:     b.ImportType,
		FilePath: "file://" + path,
	})
	if err != nil {
		log.Error().Err(err).Int64("chat_id", msg.Chat.ID).Str("file", doc.FileName).Msg("import failed")
		b.reply(ctx, msg, FailurePrefix+err.Error())
		return
	}

	log.Info().
		Int64("chat_id", msg.Chat.ID).
		Str("file", doc.FileName).
		Int("rows", res.Rows).
		Int("stored", res.Stored).
		Msg("document imported")
	b.reply(ctx, msg, SuccessText)
}

// download fetches a Telegram file into a fresh temp file. The returned path
// is set whenever the temp file was created, even on error.
func (b *Bot) download(ctx context.Context, fileID string) (string, error) {
	url, err := b.API.GetFileDirectURL(fileID)
	if err != nil {
		return "", fmt.Errorf("get file: %w", err)
	}

	tmp, err := os.CreateTemp(b.TempDir, "tg-*.xlsx")
	if err != nil {
		return "", err
	}
	defer tmp.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return tmp.Name(), err
	}
	resp, err := b.HTTP.Do(req)
	if err != nil {
		return tmp.Name(), fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return tmp.Name(), fmt.Errorf("download: status %d", resp.StatusCode)
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		return tmp.Name(), fmt.Errorf("download: %w", err)
	}
	return tmp.Name(), tmp.Close()
}

func (b *Bot) reply(ctx context.Context, msg *tgbotapi.Message, text string) {
	out := tgbotapi.NewMessage(msg.Chat.ID, strings.TrimSpace(text))
	out.ReplyToMessageID = msg.MessageID
	if _, err := b.API.Send(out); err != nil {
		log := logger.Component(ctx, "bot")
		log.Error().Err(err).Int64("chat_id", msg.Chat.ID).Msg("send reply")
	}
}
