package ledger_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/make-it-kro/lunch-poll/backend/internal/database"
	"github.com/make-it-kro/lunch-poll/backend/internal/ledger"
	"github.com/make-it-kro/lunch-poll/backend/internal/models"
)

// TestLedgerOnPostgres runs the vote transaction against a real
// PostgreSQL instance, where concurrent transactions genuinely
// interleave and the counter compare-and-swap has to retry.
// Requires Docker; enable with INTEGRATION_TESTS=1.
func TestLedgerOnPostgres(t *testing.T) {
	if os.Getenv("INTEGRATION_TESTS") == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run container-backed tests")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("lunchpoll_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	l := ledger.New(db)
	const day = "2024-03-04"
	const voters = 32

	var wg sync.WaitGroup
	errs := make(chan error, voters)
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := fmt.Sprintf("user-%02d", i)
			choice := models.ChoiceJoining
			if i%4 == 0 {
				choice = models.ChoiceNotJoining
			}
			for {
				err := l.RecordVote(ctx, user, choice, day)
				if err == nil {
					return
				}
				if !errors.Is(err, ledger.ErrNotRecorded) {
					errs <- err
					return
				}
				// contention exhausted the retry budget; vote again
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent vote failed: %v", err)
	}

	var poll models.DailyPoll
	require.NoError(t, db.Take(&poll, "date = ?", day).Error)

	var responses int64
	require.NoError(t, db.Model(&models.UserResponse{}).Where("date = ?", day).Count(&responses).Error)

	assert.Equal(t, voters, poll.Joining+poll.NotJoining)
	assert.Equal(t, int64(voters), responses)
	assert.Equal(t, 8, poll.NotJoining)
	assert.GreaterOrEqual(t, poll.Joining, 0)
	assert.GreaterOrEqual(t, poll.NotJoining, 0)
}
