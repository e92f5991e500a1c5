package services

import (
	"context"
	"errors"
	"io"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/alimgiray/crewledger/internal/ledger"
	"github.com/alimgiray/crewledger/internal/models"
	"github.com/alimgiray/crewledger/internal/repositories"
	"github.com/alimgiray/crewledger/pkg/config"
	"github.com/alimgiray/crewledger/pkg/database"
	"github.com/alimgiray/crewledger/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

var otpInBody = regexp.MustCompile(`\b(\d{6})\b`)

// lastCode returns the code from the most recent mail
func (m *fakeMailer) lastCode(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent, "no mail was sent")
	match := otpInBody.FindStringSubmatch(m.sent[len(m.sent)-1].Body)
	require.Len(t, match, 2, "mail body has no code")
	return match[1]
}

type testEnv struct {
	userRepo    *repositories.UserRepository
	workerRepo  *repositories.WorkerRepository
	projectRepo *repositories.ProjectRepository
	gate        *AccessGate
	projects    *ProjectService
	workers     *WorkerService
	exports     *ExportService
	tokens      *TokenService
	auth        *AuthService
	mailer      *fakeMailer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger.SetOutput(io.Discard)
	db, err := database.OpenAndMigrate(database.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	env := &testEnv{
		userRepo:    repositories.NewUserRepository(db),
		workerRepo:  repositories.NewWorkerRepository(db),
		projectRepo: repositories.NewProjectRepository(db),
		mailer:      &fakeMailer{},
	}
	env.gate = NewAccessGate(env.projectRepo, env.workerRepo)
	env.projects = NewProjectService(env.projectRepo, env.gate)
	env.workers = NewWorkerService(env.workerRepo, env.gate)
	env.exports = NewExportService(env.projects, env.gate)
	env.tokens = NewTokenService("test-secret", time.Hour)
	env.auth = NewAuthService(env.userRepo, env.mailer, env.tokens, config.AuthConfig{
		OTPTTL:         5 * time.Minute,
		OTPMaxAttempts: 3,
	})
	env.auth.hashCost = bcrypt.MinCost
	return env
}

func (env *testEnv) newOwner(t *testing.T, email string) uuid.UUID {
	t.Helper()
	user := &models.User{ID: uuid.New(), Email: email}
	require.NoError(t, env.userRepo.Create(context.Background(), user))
	return user.ID
}

func (env *testEnv) newWorker(t *testing.T, owner uuid.UUID, name string) *models.Worker {
	t.Helper()
	worker, err := env.workers.AddWorker(context.Background(), owner, AddWorkerRequest{
		Name:        name,
		Email:       name + "@example.com",
		PhoneNumber: "+90 555 000 0000",
		GitHubLink:  "https://github.com/" + name,
	})
	require.NoError(t, err)
	return worker
}

func amount(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func projectInput(name string, workers ...ledger.PaymentRequest) ledger.ProjectInput {
	return ledger.ProjectInput{
		Name:           name,
		StartDate:      "2024-01-01",
		EndDate:        "2024-06-30",
		TotalBudget:    amount("1000"),
		ProjectAdvance: amount("200"),
		Workers:        workers,
	}
}

func requireErrorAs[T error](t *testing.T, err error) T {
	t.Helper()
	var target T
	require.Error(t, err)
	require.True(t, errors.As(err, &target), "expected %T, got %T: %v", target, err, err)
	return target
}
