package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/divvyapp/divvy/internal/models"
	"github.com/divvyapp/divvy/internal/notify"
)

// fakeMailer records invitations instead of dialing SMTP.
type fakeMailer struct {
	sent []string
	err  error
}

func (m *fakeMailer) SendBillInvitation(to, displayName, creatorName, billTitle string, share decimal.Decimal, dueDate time.Time) error {
	m.sent = append(m.sent, to)
	return m.err
}

func TestCreateBill(t *testing.T) {
	store := newServiceStore(t)
	alice := seedUser(t, store, "alice@example.com")
	bob := seedUser(t, store, "bob@example.com")
	carol := seedUser(t, store, "carol@example.com")

	mailer := &fakeMailer{}
	hub := notify.NewHub()
	created, cancel := hub.Subscribe(notify.TopicBillCreated)
	defer cancel()

	svc := NewBillService(store, mailer, hub)
	bill, err := svc.CreateBill(asUser(alice), CreateBillInput{
		Title:        "Dinner",
		Amount:       decimal.RequireFromString("90"),
		DueDate:      time.Now().AddDate(0, 0, 7),
		CreatorShare: decimal.RequireFromString("30"),
		Participants: []ParticipantShare{
			{Email: bob.Email, Share: decimal.RequireFromString("30")},
			{Email: carol.Email, Share: decimal.RequireFromString("30")},
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, bill.ID)
	assert.Equal(t, models.BillStatusUnpaid, bill.Status)

	got, err := store.GetBill(asUser(alice), bill.ID)
	require.NoError(t, err)
	require.Len(t, got.Participants, 3)

	for _, p := range got.Participants {
		if p.UserID == alice.ID {
			assert.True(t, p.HasPaid, "creator's share is covered up front")
		} else {
			assert.False(t, p.HasPaid)
		}
	}

	// Only the invited friends get an email, not the creator.
	assert.ElementsMatch(t, []string{bob.Email, carol.Email}, mailer.sent)

	select {
	case event := <-created:
		assert.Equal(t, bill.ID, event.BillID)
	case <-time.After(time.Second):
		t.Fatal("expected a bill.created event")
	}
}

func TestCreateBill_ShareValidation(t *testing.T) {
	store := newServiceStore(t)
	alice := seedUser(t, store, "alice@example.com")
	bob := seedUser(t, store, "bob@example.com")

	svc := NewBillService(store, nil, nil)

	input := func(creatorShare, bobShare string) CreateBillInput {
		return CreateBillInput{
			Title:        "Groceries",
			Amount:       decimal.RequireFromString("100"),
			DueDate:      time.Now().AddDate(0, 0, 3),
			CreatorShare: decimal.RequireFromString(creatorShare),
			Participants: []ParticipantShare{
				{Email: bob.Email, Share: decimal.RequireFromString(bobShare)},
			},
		}
	}

	t.Run("within tolerance", func(t *testing.T) {
		// 40 + 59.99 = 99.99, off by exactly the allowed 0.01.
		_, err := svc.CreateBill(asUser(alice), input("40", "59.99"))
		require.NoError(t, err)
	})

	t.Run("over tolerance", func(t *testing.T) {
		_, err := svc.CreateBill(asUser(alice), input("40", "59.98"))
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown participant", func(t *testing.T) {
		in := input("50", "50")
		in.Participants[0].Email = "nobody@example.com"
		_, err := svc.CreateBill(asUser(alice), in)
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("duplicate participant", func(t *testing.T) {
		in := CreateBillInput{
			Title:        "Groceries",
			Amount:       decimal.RequireFromString("100"),
			DueDate:      time.Now().AddDate(0, 0, 3),
			CreatorShare: decimal.RequireFromString("50"),
			Participants: []ParticipantShare{
				{Email: bob.Email, Share: decimal.RequireFromString("25")},
				{Email: bob.Email, Share: decimal.RequireFromString("25")},
			},
		}
		_, err := svc.CreateBill(asUser(alice), in)
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("past due date", func(t *testing.T) {
		in := input("50", "50")
		in.DueDate = time.Now().AddDate(0, 0, -1)
		_, err := svc.CreateBill(asUser(alice), in)
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("missing title", func(t *testing.T) {
		in := input("50", "50")
		in.Title = ""
		_, err := svc.CreateBill(asUser(alice), in)
		require.ErrorIs(t, err, ErrValidation)
	})
}

func TestGetBill_ParticipantsOnly(t *testing.T) {
	store := newServiceStore(t)
	alice := seedUser(t, store, "alice@example.com")
	bob := seedUser(t, store, "bob@example.com")
	mallory := seedUser(t, store, "mallory@example.com")

	now := time.Now()
	bill := seedBill(t, store, alice, now, now.AddDate(0, 0, 3), "50", map[*models.User]string{bob: "50"})

	svc := NewBillService(store, nil, nil)

	_, err := svc.GetBill(asUser(bob), bill.ID)
	require.NoError(t, err)

	_, err = svc.GetBill(asUser(mallory), bill.ID)
	require.ErrorIs(t, err, ErrNotParticipant)
}

func TestListBills(t *testing.T) {
	store := newServiceStore(t)
	alice := seedUser(t, store, "alice@example.com")
	bob := seedUser(t, store, "bob@example.com")
	carol := seedUser(t, store, "carol@example.com")

	now := time.Now()
	seedBill(t, store, alice, now, now.AddDate(0, 0, 3), "50", map[*models.User]string{bob: "50"})
	seedBill(t, store, alice, now, now.AddDate(0, 0, 5), "20", map[*models.User]string{carol: "20"})

	svc := NewBillService(store, nil, nil)

	aliceBills, err := svc.ListBills(asUser(alice))
	require.NoError(t, err)
	assert.Len(t, aliceBills, 2)

	bobBills, err := svc.ListBills(asUser(bob))
	require.NoError(t, err)
	assert.Len(t, bobBills, 1)
}
