package infrastructure

import (
	"errors"
	"testing"

	"github.com/musicbridge/musicbridge/internal/domain"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type recordedCommand struct {
	name string
	args []string
}

func newRecordingNotifier(method string, enabled bool, err error) (*NotificationService, *[]recordedCommand) {
	var calls []recordedCommand
	n := NewNotificationService(&domain.NotificationConfig{Enabled: enabled, Method: method}, zap.NewNop())
	n.run = func(name string, args ...string) error {
		calls = append(calls, recordedCommand{name: name, args: args})
		return err
	}
	return n, &calls
}

func TestNotificationService_Disabled(t *testing.T) {
	n, calls := newRecordingNotifier("notify-send", false, nil)

	assert.NoError(t, n.Send("t", "m"))
	assert.Empty(t, *calls)
}

func TestNotificationService_NotifySend(t *testing.T) {
	n, calls := newRecordingNotifier("notify-send", true, nil)

	assert.NoError(t, n.Send("Download complete", "3 track(s) ready"))
	assert.Equal(t, []recordedCommand{{name: "notify-send", args: []string{"Download complete", "3 track(s) ready"}}}, *calls)
}

func TestNotificationService_OSAScriptQuotes(t *testing.T) {
	n, calls := newRecordingNotifier("osascript", true, nil)

	assert.NoError(t, n.Send("Title", `say "hi"`))
	assert.Equal(t, `display notification "say \"hi\"" with title "Title"`, (*calls)[0].args[1])
}

func TestNotificationService_Failure(t *testing.T) {
	n, _ := newRecordingNotifier("notify-send", true, errors.New("no display"))
	assert.Error(t, n.Send("t", "m"))
}

func TestNotificationService_UnknownMethod(t *testing.T) {
	n, calls := newRecordingNotifier("pigeon", true, nil)
	assert.NoError(t, n.Send("t", "m"))
	assert.Empty(t, *calls)
}

func TestBatchNotification(t *testing.T) {
	batch := domain.NewBatch("u", domain.Quality1080p, domain.TypeVideo)
	batch.MarkPackaging(2, []domain.FailedTrack{{Index: 0}})
	batch.MarkDone(1)

	title, msg := BatchNotification(batch)
	assert.Equal(t, "Download partially complete", title)
	assert.Equal(t, "2 track(s) ready, 1 failed", msg)

	batch.MarkFailed(errors.New("token expired"))
	title, msg = BatchNotification(batch)
	assert.Equal(t, "Download failed", title)
	assert.Equal(t, "token expired", msg)
}
