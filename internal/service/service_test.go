package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uatas-cs/complaint-service/internal/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq int

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbSeq++
	dsn := fmt.Sprintf("file:svc%d?mode=memory&cache=shared", dbSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{}, &model.NomorTicket{}, &model.Ticket{},
		&model.Kontak{}, &model.History{},
	))
	return db
}

// eventRecorder captures produced events for assertions.
type eventRecorder struct {
	mu     sync.Mutex
	events []string
}

func (r *eventRecorder) ProduceComplaintEvent(_ context.Context, event string, _ map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *eventRecorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func newTicketService(t *testing.T) (*TicketService, *eventRecorder, *gorm.DB) {
	t.Helper()
	db := testDB(t)
	rec := &eventRecorder{}
	return NewTicketService(db, rec), rec, db
}
