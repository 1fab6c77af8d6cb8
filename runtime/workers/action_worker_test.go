package workers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"social-chat/contract"
	"social-chat/domain/chat"
	"social-chat/mocks"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestActionWorker_Handles_Every_Job(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	handler := mocks.NewMockIActionHandler(ctrl)
	jobs := make(chan contract.Job, 3)

	handled := make(chan contract.Job, 3)
	handler.EXPECT().Handle(gomock.Any(), gomock.Any()).
		Do(func(_ context.Context, job contract.Job) { handled <- job }).
		Times(3)

	// Given three queued jobs and a closed queue
	for i := 0; i < 3; i++ {
		jobs <- contract.Job{UserID: "alice", Action: chat.IndividualMessageCommand{ReceiverID: "bob", Message: "hi"}}
	}
	close(jobs)

	// When the worker runs
	err := NewActionWorker(jobs, handler, slog.Default()).Run(context.Background())

	// Then it drained the queue and returned cleanly
	req.NoError(err)
	req.Len(handled, 3)
}

func TestActionPool_Under_Supervisor(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	handler := mocks.NewMockIActionHandler(ctrl)
	jobs := make(chan contract.Job)

	handled := make(chan struct{}, 10)
	handler.EXPECT().Handle(gomock.Any(), gomock.Any()).
		Do(func(context.Context, contract.Job) { handled <- struct{}{} }).
		Times(10)

	ctx, cancel := context.WithCancel(context.Background())
	sup := NewSupervisor(slog.Default())
	sup.Add(NewActionPool(4, jobs, handler, slog.Default())...)
	done := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(done)
	}()

	for i := 0; i < 10; i++ {
		jobs <- contract.Job{UserID: "alice"}
	}
	req.Eventually(func() bool { return len(handled) == 10 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		req.Fail("Pool should stop with its context")
	}
}
