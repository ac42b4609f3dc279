package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Dan9191/advisor-crm/internal/apperr"
	"github.com/Dan9191/advisor-crm/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	ctx := context.Background()
	db, err := Open(ctx, DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewRepository(db, DriverSQLite)
	require.NoError(t, repo.Migrate(ctx))
	return repo
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decp(s string) *decimal.Decimal {
	v := dec(s)
	return &v
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testSchedule(entityID string) *models.FeeSchedule {
	return &models.FeeSchedule{
		EntityType:    models.EntityHousehold,
		EntityID:      entityID,
		Name:          "Standard AUM",
		FeeType:       models.FeeTypeAUM,
		Frequency:     models.FrequencyQuarterly,
		BillingMethod: models.BillingAdvance,
		MinimumFee:    decp("2000"),
		EffectiveDate: day(2026, time.January, 1),
		CreatedBy:     "advisor-7",
		Tiers: []models.FeeTier{
			{MinValue: dec("0"), MaxValue: decp("1000000"), Rate: dec("0.01")},
			{MinValue: dec("1000000"), MaxValue: decp("5000000"), Rate: dec("0.0075")},
			{MinValue: dec("5000000"), Rate: dec("0.005")},
		},
	}
}

func TestFeeScheduleRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	s := testSchedule("h-1")
	require.NoError(t, repo.CreateFeeSchedule(ctx, s))
	require.NotEmpty(t, s.ID)

	got, err := repo.FindFeeScheduleByID(ctx, s.ID)
	require.NoError(t, err)

	assert.Equal(t, s.EntityType, got.EntityType)
	assert.Equal(t, s.FeeType, got.FeeType)
	assert.Equal(t, s.EffectiveDate, got.EffectiveDate)
	assert.Equal(t, "advisor-7", got.CreatedBy)
	require.NotNil(t, got.MinimumFee)
	assert.Equal(t, "2000", got.MinimumFee.String())
	assert.Nil(t, got.MaximumFee)

	require.Len(t, got.Tiers, 3)
	for i := range s.Tiers {
		assert.True(t, s.Tiers[i].MinValue.Equal(got.Tiers[i].MinValue), "tier %d min", i)
		assert.True(t, s.Tiers[i].Rate.Equal(got.Tiers[i].Rate), "tier %d rate", i)
	}
	assert.Equal(t, "5000000", got.Tiers[1].MaxValue.String())
	assert.Nil(t, got.Tiers[2].MaxValue)

	byEntity, err := repo.FindFeeScheduleByEntity(ctx, models.EntityHousehold, "h-1")
	require.NoError(t, err)
	assert.Equal(t, s.ID, byEntity.ID)
}

func TestFeeScheduleUniquePerEntity(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	require.NoError(t, repo.CreateFeeSchedule(ctx, testSchedule("h-1")))
	err := repo.CreateFeeSchedule(ctx, testSchedule("h-1"))
	assert.True(t, apperr.IsConflict(err), "got %v", err)

	other := testSchedule("h-1")
	other.EntityType = models.EntityPerson
	require.NoError(t, repo.CreateFeeSchedule(ctx, other))

	list, err := repo.ListFeeSchedules(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Len(t, list[0].Tiers, 3)
}

func TestFeeScheduleUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	s := testSchedule("a-9")
	require.NoError(t, repo.CreateFeeSchedule(ctx, s))

	s.FeeType = models.FeeTypeFlat
	s.MinimumFee = nil
	s.Tiers = []models.FeeTier{{MinValue: dec("0"), Rate: dec("5000")}}
	require.NoError(t, repo.UpdateFeeSchedule(ctx, s))

	got, err := repo.FindFeeScheduleByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FeeTypeFlat, got.FeeType)
	assert.Nil(t, got.MinimumFee)
	require.Len(t, got.Tiers, 1)
	assert.Equal(t, "5000", got.Tiers[0].Rate.String())

	require.NoError(t, repo.DeleteFeeSchedule(ctx, s.ID))
	_, err = repo.FindFeeScheduleByID(ctx, s.ID)
	assert.True(t, apperr.IsNotFound(err))
	assert.True(t, apperr.IsNotFound(repo.DeleteFeeSchedule(ctx, s.ID)))

	missing := testSchedule("a-10")
	missing.ID = "nope"
	assert.True(t, apperr.IsNotFound(repo.UpdateFeeSchedule(ctx, missing)))
}

func TestLatestBalance(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	for _, b := range []models.BalanceRecord{
		{EntityType: models.EntityAccount, EntityID: "a-1", AsOf: day(2026, time.March, 31), Amount: dec("900000"), Source: "manual"},
		{EntityType: models.EntityAccount, EntityID: "a-1", AsOf: day(2026, time.June, 30), Amount: dec("1250000.55"), Source: "schwab"},
		{EntityType: models.EntityAccount, EntityID: "a-2", AsOf: day(2026, time.June, 30), Amount: dec("10"), Source: "manual"},
	} {
		require.NoError(t, repo.CreateBalance(ctx, &b))
	}

	got, err := repo.LatestBalance(ctx, models.EntityAccount, "a-1", day(2026, time.July, 1))
	require.NoError(t, err)
	assert.Equal(t, "1250000.55", got.Amount.String())
	assert.Equal(t, day(2026, time.June, 30), got.AsOf)

	got, err = repo.LatestBalance(ctx, models.EntityAccount, "a-1", day(2026, time.April, 1))
	require.NoError(t, err)
	assert.Equal(t, "900000", got.Amount.String())

	_, err = repo.LatestBalance(ctx, models.EntityAccount, "a-1", day(2026, time.January, 1))
	assert.True(t, apperr.IsNotFound(err))

	all, err := repo.ListBalances(ctx, models.EntityAccount, "a-1")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestInvoiceUniquePerPeriod(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	inv := &models.Invoice{
		ScheduleID:     "s-1",
		EntityType:     models.EntityHousehold,
		EntityID:       "h-1",
		PeriodStart:    day(2026, time.July, 1),
		PeriodEnd:      day(2026, time.September, 30),
		BillableAmount: dec("1500000"),
		AnnualFee:      dec("12500"),
		Amount:         dec("3125"),
		EffectiveRate:  dec("83.33"),
		BillingMethod:  models.BillingAdvance,
		HMAC:           "abc",
	}
	require.NoError(t, repo.CreateInvoice(ctx, inv))

	exists, err := repo.InvoiceExists(ctx, "s-1", day(2026, time.July, 1))
	require.NoError(t, err)
	assert.True(t, exists)

	dup := *inv
	dup.ID = ""
	assert.True(t, apperr.IsConflict(repo.CreateInvoice(ctx, &dup)))

	list, err := repo.ListInvoices(ctx, "s-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "3125", list[0].Amount.String())
	assert.Equal(t, day(2026, time.September, 30), list[0].PeriodEnd)
}

func TestMeetingAndTasks(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	due := day(2026, time.November, 1)
	m := &models.Meeting{
		HouseholdID:       "h-1",
		Title:             "Annual review",
		Notes:             "Discussed rebalancing.",
		ScheduledAt:       time.Date(2026, time.October, 12, 15, 0, 0, 0, time.UTC),
		ExternalAttendees: []models.ExternalAttendee{{Name: "Pat Lee", Organization: "Lee CPA"}},
		ActionItems:       []models.ActionItem{{Description: "Send IPS", Assignee: "advisor-7", DueDate: &due}},
	}
	require.NoError(t, repo.CreateMeeting(ctx, m))

	got, err := repo.FindMeetingByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.ExternalAttendees, got.ExternalAttendees)
	assert.Empty(t, got.DecisionsMade)
	require.Len(t, got.ActionItems, 1)
	assert.Equal(t, due, *got.ActionItems[0].DueDate)
	assert.Nil(t, got.Summary)

	got.Summary = &models.MeetingSummary{Text: "Rebalancing", Topics: []string{"portfolio"}, Generator: "keyword"}
	require.NoError(t, repo.UpdateMeeting(ctx, got))
	again, err := repo.FindMeetingByID(ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, again.Summary)
	assert.Equal(t, []string{"portfolio"}, again.Summary.Topics)

	again.ActionItems = append(again.ActionItems, models.ActionItem{Description: "Call CPA"})
	pending := map[int]*models.Task{
		0: {Title: "Send IPS", DueDate: &due},
		1: {Title: "Call CPA"},
	}
	require.NoError(t, repo.CreateActionItemTasks(ctx, again, pending))
	assert.NotEmpty(t, again.ActionItems[0].TaskID)
	assert.Equal(t, pending[1].ID, again.ActionItems[1].TaskID)

	linked, err := repo.FindMeetingByID(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, linked.ActionItems, 2)
	assert.Equal(t, pending[0].ID, linked.ActionItems[0].TaskID)

	tasks, err := repo.ListTasksByMeeting(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	byTitle := map[string]*models.Task{}
	for _, tk := range tasks {
		byTitle[tk.Title] = tk
	}
	require.Contains(t, byTitle, "Send IPS")
	assert.Equal(t, models.TaskOpen, byTitle["Send IPS"].Status)
	assert.Equal(t, m.ID, byTitle["Send IPS"].MeetingID)
	assert.Equal(t, due, *byTitle["Send IPS"].DueDate)
	assert.Nil(t, byTitle["Call CPA"].DueDate)

	_, err = repo.FindMeetingByID(ctx, "missing")
	assert.True(t, apperr.IsNotFound(err))
}

func TestEmailTemplates(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	tpl := &models.EmailTemplate{Name: "fee-notice", Subject: "Your {{.Period}} fee", Body: "Hello {{.Name}}"}
	require.NoError(t, repo.CreateEmailTemplate(ctx, tpl))
	assert.True(t, apperr.IsConflict(repo.CreateEmailTemplate(ctx, &models.EmailTemplate{Name: "fee-notice"})))

	got, err := repo.FindEmailTemplateByID(ctx, tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, tpl.Body, got.Body)

	list, err := repo.ListEmailTemplates(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCreateActionItemTasksRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	// Never stored, so linking the tasks back fails after they are inserted.
	m := &models.Meeting{
		ID:          "gone",
		ActionItems: []models.ActionItem{{Description: "Send IPS"}, {Description: "Call CPA"}},
	}
	pending := map[int]*models.Task{0: {Title: "Send IPS"}, 1: {Title: "Call CPA"}}

	err := repo.CreateActionItemTasks(ctx, m, pending)
	assert.True(t, apperr.IsNotFound(err))
	assert.Empty(t, m.ActionItems[0].TaskID)
	assert.Empty(t, m.ActionItems[1].TaskID)

	tasks, err := repo.ListTasksByMeeting(ctx, "gone")
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestCreateBalancesIsAtomic(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	good := &models.BalanceRecord{EntityType: models.EntityAccount, EntityID: "a-1", AsOf: day(2026, time.September, 30), Amount: dec("100"), Source: "schwab"}
	bad := &models.BalanceRecord{EntityType: models.EntityAccount, EntityID: "", AsOf: day(2026, time.September, 30), Amount: dec("50"), Source: "schwab"}

	require.Error(t, repo.CreateBalances(ctx, []*models.BalanceRecord{good, bad}))
	assert.Empty(t, good.ID)
	stored, err := repo.ListBalances(ctx, models.EntityAccount, "a-1")
	require.NoError(t, err)
	assert.Empty(t, stored)

	bad.EntityID = "a-2"
	require.NoError(t, repo.CreateBalances(ctx, []*models.BalanceRecord{good, bad}))
	found, err := repo.FindBalanceByID(ctx, good.ID)
	require.NoError(t, err)
	assert.Equal(t, "100", found.Amount.String())

	_, err = repo.FindBalanceByID(ctx, "missing")
	assert.True(t, apperr.IsNotFound(err))
}

func TestNumericPrecisionRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	s := testSchedule("h-precise")
	s.Tiers[0].Rate = dec("0.0123456789")
	s.MinimumFee = decp("1234.5678901")
	require.NoError(t, repo.CreateFeeSchedule(ctx, s))

	got, err := repo.FindFeeScheduleByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "0.0123456789", got.Tiers[0].Rate.String())
	assert.Equal(t, "1234.5678901", got.MinimumFee.String())
}
