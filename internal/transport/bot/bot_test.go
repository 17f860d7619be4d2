package bot

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"ledger_import/internal/services/importer"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu      sync.Mutex
	sent    []tgbotapi.MessageConfig
	fileURL string
	updates chan tgbotapi.Update
	stopped bool
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, m)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) GetFileDirectURL(string) (string, error) {
	if f.fileURL == "" {
		return "", errors.New("file is too big")
	}
	return f.fileURL, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel { return f.updates }

func (f *fakeAPI) StopReceivingUpdates() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeAPI) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, m := range f.sent {
		out = append(out, m.Text)
	}
	return out
}

type fakeImporter struct {
	req     importer.Request
	content string
	err     error
}

func (f *fakeImporter) Import(_ context.Context, req importer.Request) (importer.Result, error) {
	f.req = req
	b, _ := os.ReadFile(strings.TrimPrefix(req.FilePath, "file://"))
	f.content = string(b)
	return importer.Result{Rows: 1, Stored: 1}, f.err
}

func fileServer(t *testing.T, status int) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte("xlsx-bytes"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func docUpdate(mime string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 7,
		Chat:      &tgbotapi.Chat{ID: 42},
		Document:  &tgbotapi.Document{FileID: "f1", FileName: "statement.xlsx", MimeType: mime},
	}}
}

func TestHandle_Start(t *testing.T) {
	api := &fakeAPI{}
	b := New(api, &fakeImporter{}, t.TempDir(), "payments")

	b.Handle(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
		Text:     "/start",
		Chat:     &tgbotapi.Chat{ID: 1},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}},
	}})

	assert.Equal(t, []string{GreetingText}, api.texts())
}

func TestHandle_DocumentImported(t *testing.T) {
	srv := fileServer(t, http.StatusOK)
	api := &fakeAPI{fileURL: srv.URL}
	imp := &fakeImporter{}
	dir := t.TempDir()
	b := New(api, imp, dir, "payments")

	b.Handle(context.Background(), docUpdate(XLSXMime))

	assert.Equal(t, []string{SuccessText}, api.texts())
	assert.Equal(t, "payments", imp.req.Type)
	assert.Equal(t, "xlsx-bytes", imp.content)
	assert.Equal(t, 7, api.sent[0].ReplyToMessageID)
	assert.EqualValues(t, 42, api.sent[0].ChatID)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temp file must be removed")
}

func TestHandle_ImportErrorReported(t *testing.T) {
	srv := fileServer(t, http.StatusOK)
	api := &fakeAPI{fileURL: srv.URL}
	dir := t.TempDir()
	b := New(api, &fakeImporter{err: errors.New("payments: commit: conn closed")}, dir, "payments")

	b.Handle(context.Background(), docUpdate(XLSXMime))

	assert.Equal(t, []string{"An error occurred: payments: commit: conn closed"}, api.texts())
	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestHandle_DownloadFailure(t *testing.T) {
	srv := fileServer(t, http.StatusNotFound)
	api := &fakeAPI{fileURL: srv.URL}
	imp := &fakeImporter{}
	dir := t.TempDir()
	b := New(api, imp, dir, "payments")

	b.Handle(context.Background(), docUpdate(XLSXMime))

	assert.Equal(t, []string{"An error occurred: download: status 404"}, api.texts())
	assert.Empty(t, imp.req.FilePath)
	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestHandle_IgnoresOtherDocuments(t *testing.T) {
	api := &fakeAPI{}
	b := New(api, &fakeImporter{}, t.TempDir(), "payments")

	b.Handle(context.Background(), docUpdate("application/pdf"))
	b.Handle(context.Background(), tgbotapi.Update{})

	assert.Empty(t, api.texts())
}

func TestRun_StopsOnCancel(t *testing.T) {
	api := &fakeAPI{updates: make(chan tgbotapi.Update, 1)}
	b := New(api, &fakeImporter{}, t.TempDir(), "payments")

	api.updates <- tgbotapi.Update{Message: &tgbotapi.Message{
		Text:     "/start",
		Chat:     &tgbotapi.Chat{ID: 1},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	require.Eventually(t, func() bool { return len(api.texts()) == 1 }, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
	api.mu.Lock()
	defer api.mu.Unlock()
	assert.True(t, api.stopped)
}
