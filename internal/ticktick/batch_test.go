package ticktick

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCreator records creation calls and fails the task IDs listed in
// failWith.
type fakeCreator struct {
	calls    int
	failWith map[string]error // keyed by title
}

func (f *fakeCreator) CreateTask(_ context.Context, input TaskInput) (*Task, error) {
	f.calls++
	if err, ok := f.failWith[input.Title]; ok {
		return nil, err
	}
	return &Task{ID: fmt.Sprintf("id-%d", f.calls), Title: input.Title, ProjectID: input.ProjectID}, nil
}

func validInput(title string) TaskInput {
	return TaskInput{Title: title, ProjectID: "p1"}
}

func TestCreateBatchAllSucceed(t *testing.T) {
	creator := &fakeCreator{}
	result, err := CreateBatch(context.Background(), creator, []TaskInput{
		validInput("one"), validInput("two"), validInput("three"),
	})
	require.NoError(t, err)
	require.Len(t, result.Created, 3)
	assert.Empty(t, result.Failed)
	assert.Equal(t, 0, result.Created[0].Index)
	assert.Equal(t, "one", result.Created[0].Title)
	assert.NotEmpty(t, result.Created[0].ID)
}

func TestCreateBatchRejectsWholeBatchOnInvalidInput(t *testing.T) {
	creator := &fakeCreator{}
	_, err := CreateBatch(context.Background(), creator, []TaskInput{
		validInput("fine"),
		{Title: "bad priority", ProjectID: "p1", Priority: 2},
		validInput("also fine"),
	})

	var batchErr *BatchValidationError
	require.ErrorAs(t, err, &batchErr)
	require.Len(t, batchErr.Problems, 1, "only the invalid entry is reported")
	assert.Equal(t, 1, batchErr.Problems[0].Index)
	assert.Contains(t, batchErr.Problems[0].Message, "priority")
	assert.Zero(t, creator.calls, "a rejected batch makes no creation calls")
}

func TestCreateBatchReportsEveryInvalidEntry(t *testing.T) {
	creator := &fakeCreator{}
	_, err := CreateBatch(context.Background(), creator, []TaskInput{
		{Title: "", ProjectID: "p1"},
		validInput("fine"),
		{Title: "no project"},
		{Title: "bad date", ProjectID: "p1", DueDate: "whenever"},
	})

	var batchErr *BatchValidationError
	require.ErrorAs(t, err, &batchErr)
	require.Len(t, batchErr.Problems, 3)
	assert.Equal(t, 0, batchErr.Problems[0].Index)
	assert.Equal(t, 2, batchErr.Problems[1].Index)
	assert.Equal(t, 3, batchErr.Problems[2].Index)
	assert.Zero(t, creator.calls)
}

func TestCreateBatchBestEffortExecution(t *testing.T) {
	creator := &fakeCreator{
		failWith: map[string]error{
			"two": &Error{Kind: KindServer, StatusCode: 500, Message: "server error"},
		},
	}
	result, err := CreateBatch(context.Background(), creator, []TaskInput{
		validInput("one"), validInput("two"), validInput("three"),
	})
	require.NoError(t, err)

	require.Len(t, result.Created, 2)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, 3, creator.calls, "one failure does not stop the rest")

	assert.Equal(t, 1, result.Failed[0].Index)
	assert.Equal(t, "two", result.Failed[0].Title)
	assert.Equal(t, KindServer, result.Failed[0].Kind)

	// Every input index lands in exactly one of the two lists.
	seen := map[int]bool{}
	for _, c := range result.Created {
		seen[c.Index] = true
	}
	for _, f := range result.Failed {
		assert.False(t, seen[f.Index])
		seen[f.Index] = true
	}
	assert.Len(t, seen, 3)
}

func TestCreateBatchEmpty(t *testing.T) {
	creator := &fakeCreator{}
	result, err := CreateBatch(context.Background(), creator, nil)
	require.NoError(t, err)
	assert.Empty(t, result.Created)
	assert.Empty(t, result.Failed)
	assert.Zero(t, creator.calls)
}
