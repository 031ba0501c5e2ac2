package notify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/make-it-kro/lunch-poll/backend/internal/models"
	"github.com/make-it-kro/lunch-poll/backend/internal/notify"
	"github.com/make-it-kro/lunch-poll/backend/internal/testutil"
)

type fakeSMS struct {
	sent []string
}

func (f *fakeSMS) Send(to, _ string) error {
	f.sent = append(f.sent, to)
	return nil
}

func TestBroadcastSendsTopicMessage(t *testing.T) {
	db := testutil.NewTestDB(t)
	fcm := testutil.NewFakeMessenger()
	d := notify.NewDispatcher(db, fcm, notify.Config{Topic: "lunch-vote"})

	id, err := d.BroadcastLunchReminder(context.Background(), "2024-03-04")
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, []string{"lunch-vote"}, fcm.TopicSends)
}

func TestBroadcastFansOutSMSToUsersWithPhones(t *testing.T) {
	db := testutil.NewTestDB(t)
	require.NoError(t, db.Create(&models.UserProfile{UID: "u1", Nickname: "a", Email: "a@x.kr", PhoneNumber: "+821012345678"}).Error)
	require.NoError(t, db.Create(&models.UserProfile{UID: "u2", Nickname: "b", Email: "b@x.kr"}).Error)

	sms := &fakeSMS{}
	d := notify.NewDispatcher(db, testutil.NewFakeMessenger(), notify.Config{SMS: sms})

	_, err := d.BroadcastLunchReminder(context.Background(), "2024-03-04")
	require.NoError(t, err)
	assert.Equal(t, []string{"+821012345678"}, sms.sent)
}

func TestBroadcastPropagatesProviderFailure(t *testing.T) {
	db := testutil.NewTestDB(t)
	fcm := testutil.NewFakeMessenger()
	fcm.Err = errors.New("fcm unavailable")

	sms := &fakeSMS{}
	d := notify.NewDispatcher(db, fcm, notify.Config{SMS: sms})

	_, err := d.BroadcastLunchReminder(context.Background(), "2024-03-04")
	assert.Error(t, err)
	assert.Empty(t, sms.sent, "SMS channel must not fire when the broadcast failed")
}

func TestRegisterStoresTokenAndSubscribes(t *testing.T) {
	db := testutil.NewTestDB(t)
	fcm := testutil.NewFakeMessenger()
	d := notify.NewDispatcher(db, fcm, notify.Config{})

	require.NoError(t, d.Register(context.Background(), "u1", "tok-1"))

	var device models.DeviceToken
	require.NoError(t, db.First(&device, "token = ?", "tok-1").Error)
	assert.Equal(t, "u1", device.UserID)
	assert.Equal(t, "lunch-vote", fcm.Subscribed["tok-1"])
}

func TestRegisterReassignsExistingToken(t *testing.T) {
	db := testutil.NewTestDB(t)
	d := notify.NewDispatcher(db, testutil.NewFakeMessenger(), notify.Config{})
	ctx := context.Background()

	require.NoError(t, d.Register(ctx, "u1", "tok-1"))
	require.NoError(t, d.Register(ctx, "u2", "tok-1"))

	var devices []models.DeviceToken
	require.NoError(t, db.Find(&devices).Error)
	require.Len(t, devices, 1)
	assert.Equal(t, "u2", devices[0].UserID)
}

func TestSendTestTargetsSingleToken(t *testing.T) {
	db := testutil.NewTestDB(t)
	fcm := testutil.NewFakeMessenger()
	d := notify.NewDispatcher(db, fcm, notify.Config{})

	_, err := d.SendTest(context.Background(), "tok-9")
	require.NoError(t, err)
	assert.Equal(t, []string{"tok-9"}, fcm.TokenSends)
}

func TestDisabledMessengerFailsCleanly(t *testing.T) {
	db := testutil.NewTestDB(t)
	d := notify.NewDispatcher(db, notify.Disabled{}, notify.Config{})

	_, err := d.BroadcastLunchReminder(context.Background(), "2024-03-04")
	assert.ErrorIs(t, err, notify.ErrNotConfigured)
}
