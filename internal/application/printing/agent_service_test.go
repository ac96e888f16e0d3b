package printing

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/edgepos/backend/internal/domain/printing"
)

func newAgentFixture() (*AgentService, *MockPrintJobRepository) {
	jobRepo := new(MockPrintJobRepository)
	return NewAgentService(jobRepo, passthroughTxManager{}, zap.NewNop()), jobRepo
}

func pendingTestJob(t *testing.T) *printing.PrintJob {
	t.Helper()
	payload, err := json.Marshal(map[string]string{"bill_number": "JKT01-20260901-0001"})
	assert.NoError(t, err)
	terminalID := testTerminalID
	job, err := printing.NewPrintJob(testStoreID, printing.JobTypeReceipt, &terminalID,
		uuid.New(), "JKT01-20260901-0001", payload, printing.PaperSizeReceipt80MM)
	assert.NoError(t, err)
	job.ClearDomainEvents()
	return job
}

func TestAgentService_Fetch_HandsOutPendingJobs(t *testing.T) {
	service, jobRepo := newAgentFixture()
	jobA := pendingTestJob(t)
	jobB := pendingTestJob(t)

	jobRepo.On("FindPendingForFetch", mock.Anything, testStoreID, &testTerminalID, defaultFetchLimit).
		Return([]printing.PrintJob{*jobA, *jobB}, nil)
	var handed []*printing.PrintJob
	jobRepo.On("SaveAll", mock.Anything, mock.AnythingOfType("[]*printing.PrintJob")).
		Run(func(args mock.Arguments) {
			handed = args.Get(1).([]*printing.PrintJob)
		}).Return(nil)

	responses, err := service.Fetch(context.Background(), testStoreID, FetchJobsRequest{TerminalID: &testTerminalID})

	assert.NoError(t, err)
	assert.Len(t, responses, 2)
	assert.Equal(t, "fetched", responses[0].Status)
	assert.Equal(t, jobA.Token, responses[0].Token)
	assert.NotEmpty(t, responses[0].Payload)

	// handoff persists before the response leaves
	assert.Len(t, handed, 2)
	for _, job := range handed {
		assert.Equal(t, printing.JobStatusFetched, job.Status)
		assert.NotNil(t, job.FetchedAt)
	}
}

func TestAgentService_Fetch_EmptyQueue(t *testing.T) {
	service, jobRepo := newAgentFixture()

	jobRepo.On("FindPendingForFetch", mock.Anything, testStoreID, (*uuid.UUID)(nil), 5).
		Return([]printing.PrintJob{}, nil)

	responses, err := service.Fetch(context.Background(), testStoreID, FetchJobsRequest{Limit: 5})

	assert.NoError(t, err)
	assert.Empty(t, responses)
	jobRepo.AssertNotCalled(t, "SaveAll", mock.Anything, mock.Anything)
}

func TestAgentService_Complete_IsIdempotent(t *testing.T) {
	service, jobRepo := newAgentFixture()
	job := pendingTestJob(t)
	assert.NoError(t, job.MarkFetched())

	jobRepo.On("FindByToken", mock.Anything, job.Token).Return(job, nil)
	jobRepo.On("Save", mock.Anything, job).Return(nil)

	resp, err := service.Complete(context.Background(), job.Token)
	assert.NoError(t, err)
	assert.Equal(t, "completed", resp.Status)
	assert.NotNil(t, resp.CompletedAt)

	// the agent may safely repeat the report after a dropped connection
	resp, err = service.Complete(context.Background(), job.Token)
	assert.NoError(t, err)
	assert.Equal(t, "completed", resp.Status)
}

func TestAgentService_Fail_RequeuesWithinBudget(t *testing.T) {
	service, jobRepo := newAgentFixture()
	job := pendingTestJob(t)
	assert.NoError(t, job.MarkFetched())

	jobRepo.On("FindByToken", mock.Anything, job.Token).Return(job, nil)
	jobRepo.On("Save", mock.Anything, job).Return(nil)

	resp, err := service.Fail(context.Background(), job.Token, FailJobRequest{
		ErrorCode: "PAPER_OUT", ErrorMessage: "printer reports paper out",
	})

	assert.NoError(t, err)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, 1, resp.RetryCount)
	assert.Empty(t, resp.ErrorMessage)
}

func TestAgentService_Fail_StaysFailedWhenBudgetSpent(t *testing.T) {
	service, jobRepo := newAgentFixture()
	job := pendingTestJob(t)

	jobRepo.On("FindByToken", mock.Anything, job.Token).Return(job, nil)
	jobRepo.On("Save", mock.Anything, job).Return(nil)

	for i := 0; i < printing.DefaultMaxRetries; i++ {
		assert.NoError(t, job.MarkFetched())
		resp, err := service.Fail(context.Background(), job.Token, FailJobRequest{
			ErrorCode: "OFFLINE", ErrorMessage: "printer unreachable",
		})
		assert.NoError(t, err)
		assert.Equal(t, "pending", resp.Status)
	}

	assert.NoError(t, job.MarkFetched())
	resp, err := service.Fail(context.Background(), job.Token, FailJobRequest{
		ErrorCode: "OFFLINE", ErrorMessage: "printer unreachable",
	})

	assert.NoError(t, err)
	assert.Equal(t, "failed", resp.Status)
	assert.Equal(t, printing.DefaultMaxRetries, resp.RetryCount)
	assert.Equal(t, "OFFLINE", resp.ErrorCode)
}

func TestAgentService_SweepStuck(t *testing.T) {
	service, jobRepo := newAgentFixture()
	job := pendingTestJob(t)
	assert.NoError(t, job.MarkFetched())

	jobRepo.On("FindStuck", mock.Anything, mock.AnythingOfType("time.Time")).
		Return([]printing.PrintJob{*job}, nil)

	count, err := service.SweepStuck(context.Background(), 10*time.Minute)

	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}
