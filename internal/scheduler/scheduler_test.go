package scheduler

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uatas-cs/complaint-service/internal/model"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq int

func testScheduler(t *testing.T) (*Scheduler, *gorm.DB) {
	t.Helper()
	dbSeq++
	dsn := fmt.Sprintf("file:sched%d?mode=memory&cache=shared", dbSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.NomorTicket{}, &model.Ticket{}))

	s, err := New(db, "Asia/Jakarta", zap.NewNop())
	require.NoError(t, err)
	return s, db
}

func seedTicket(t *testing.T, db *gorm.DB, sla int, os, bucket *string) uint {
	t.Helper()
	ticket := model.Ticket{
		SLA:          sla,
		StatusTicket: model.TicketStatusAktif,
		NamaOS:       os,
		NamaBucket:   bucket,
		CreatedTime:  time.Now().UTC(),
	}
	require.NoError(t, db.Create(&ticket).Error)
	return ticket.ID
}

func slaOf(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var ticket model.Ticket
	require.NoError(t, db.First(&ticket, id).Error)
	return ticket.SLA
}

func TestRunSLADecay_DecrementsOncePerDay(t *testing.T) {
	s, db := testScheduler(t)
	id := seedTicket(t, db, 10, nil, nil)

	day := time.Date(2026, 8, 1, 0, 0, 5, 0, s.loc)
	s.now = func() time.Time { return day }

	require.NoError(t, s.RunSLADecay(context.Background()))
	assert.Equal(t, 9, slaOf(t, db, id))

	// Second run the same day is a no-op.
	require.NoError(t, s.RunSLADecay(context.Background()))
	assert.Equal(t, 9, slaOf(t, db, id))

	day = day.AddDate(0, 0, 1)
	require.NoError(t, s.RunSLADecay(context.Background()))
	assert.Equal(t, 8, slaOf(t, db, id))
}

func TestRunSLADecay_ClampsAtZero(t *testing.T) {
	s, db := testScheduler(t)
	id := seedTicket(t, db, 1, nil, nil)

	day := time.Date(2026, 8, 1, 0, 0, 5, 0, s.loc)
	for i := 0; i < 3; i++ {
		s.now = func() time.Time { return day }
		require.NoError(t, s.RunSLADecay(context.Background()))
		day = day.AddDate(0, 0, 1)
	}
	assert.Equal(t, 0, slaOf(t, db, id))
}

func TestRunSLADecay_ManyDays(t *testing.T) {
	s, db := testScheduler(t)
	id := seedTicket(t, db, 10, nil, nil)

	day := time.Date(2026, 8, 1, 0, 0, 5, 0, s.loc)
	for i := 0; i < 4; i++ {
		s.now = func() time.Time { return day }
		require.NoError(t, s.RunSLADecay(context.Background()))
		day = day.AddDate(0, 0, 1)
	}
	assert.Equal(t, 6, slaOf(t, db, id))
}

func TestRunFieldNormalize(t *testing.T) {
	s, db := testScheduler(t)
	dash := "-"
	none := "None"
	keep := "Alpha"
	a := seedTicket(t, db, 5, &dash, &none)
	b := seedTicket(t, db, 5, nil, &keep)

	require.NoError(t, s.RunFieldNormalize(context.Background()))

	var ta, tb model.Ticket
	require.NoError(t, db.First(&ta, a).Error)
	require.NoError(t, db.First(&tb, b).Error)
	require.NotNil(t, ta.NamaOS)
	assert.Equal(t, "", *ta.NamaOS)
	require.NotNil(t, ta.NamaBucket)
	assert.Equal(t, "", *ta.NamaBucket)
	require.NotNil(t, tb.NamaOS)
	assert.Equal(t, "", *tb.NamaOS)
	assert.Equal(t, "Alpha", *tb.NamaBucket)

	// Idempotent.
	require.NoError(t, s.RunFieldNormalize(context.Background()))
	require.NoError(t, db.First(&tb, b).Error)
	assert.Equal(t, "Alpha", *tb.NamaBucket)
}

func TestNew_BadTimezone(t *testing.T) {
	_, err := New(nil, "Not/AZone", zap.NewNop())
	assert.Error(t, err)
}
